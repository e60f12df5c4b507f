// internal/zookeeper/conn.go
package zookeeper

import (
	"time"

	"github.com/go-zookeeper/zk"
)

// Conn 是对 zk.Conn 的一层薄封装，持有连接生命周期。
type Conn struct {
	*zk.Conn
}

// Connect 建立一个 ZooKeeper 会话。
func Connect(addrs []string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(addrs, sessionTimeout)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn}, nil
}

// Close 关闭会话，所有临时节点随之删除。
func (c *Conn) Close() {
	c.Conn.Close()
}
