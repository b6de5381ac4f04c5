package domain

import (
	"time"
)

// SysOprLog is one entry of the session activity log.
type SysOprLog struct {
	ID        int64     `json:"id,string"`
	SessionID string    `gorm:"index;size:64" json:"session_id"`
	OprIp     string    `json:"opr_ip"`
	OptAction string    `gorm:"index" json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `gorm:"index" json:"opt_time"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}
