package common

import (
	"encoding/base64"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

func node() *snowflake.Node {
	idNodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		idNode = n
	})
	return idNode
}

// UUIDint64 returns a new snowflake id. Ids are unique per process and never reused.
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// ParseID parses a decimal id as produced by UUIDint64.
func ParseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// TokenBytes is the entropy of a token returned by RandomToken.
const TokenBytes = 32

// RandomToken returns an unguessable url-safe token. Session ids use it,
// so it must not be derived from time or a counter.
func RandomToken() (string, error) {
	key := securecookie.GenerateRandomKey(TokenBytes)
	if key == nil {
		return "", errors.New("random source unavailable")
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}
