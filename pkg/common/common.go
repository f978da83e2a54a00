package common

import (
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

func node() *snowflake.Node {
	snowflakeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("VIEWGUARD_NODE_ID"); v != "" {
			var iv int64
			for _, c := range v {
				if c < '0' || c > '9' {
					iv = 0
					break
				}
				iv = iv*10 + int64(c-'0')
			}
			if iv > 0 && iv < 1024 {
				nodeID = iv
			}
		}
		node, err := snowflake.NewNode(nodeID)
		if err != nil {
			panic(err)
		}
		snowflakeNode = node
	})
	return snowflakeNode
}

// UUIDint64 returns a cluster-unique int64 identifier.
// The node id can be pinned with VIEWGUARD_NODE_ID for multi-instance setups.
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// UUID returns a cluster-unique identifier in string form.
func UUID() string {
	return node().Generate().String()
}

// IfEmptyStr returns defval when src is blank.
func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}

// InSlice reports whether v is present in vals.
func InSlice(v string, vals []string) bool {
	for _, s := range vals {
		if s == v {
			return true
		}
	}
	return false
}
