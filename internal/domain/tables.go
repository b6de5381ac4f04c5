package domain

var Tables = []interface{}{
	// System
	&SysOprLog{},
	// Store
	&CatalogProduct{},
	&UploadProduct{},
}
