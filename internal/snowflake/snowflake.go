package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init sets the node ID used for generated IDs (0-1023). It must be unique
// across instances sharing one database.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// NextID generates a new unique snowflake ID. Without a prior Init, node 1
// is used.
func NextID() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(1)
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}
