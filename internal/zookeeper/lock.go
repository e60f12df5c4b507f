// internal/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/jetcart/sku_locks" // 所有 SKU 锁的根节点
)

// SKULock 是一把按 SKU 维度互斥的分布式锁。
// 多实例部署且使用非数据库台账时，用它保证同一 SKU 的
// 扣减/回补串行化；不同 SKU 之间互不影响。
type SKULock struct {
	conn     *Conn
	path     string // 锁的路径，例如 /jetcart/sku_locks/sku-123
	lockNode string // 成功获取锁后，自己创建的节点路径
}

// NewSKULock 创建一把针对指定 SKU 的锁实例。
func NewSKULock(conn *Conn, sku string) (*SKULock, error) {
	if err := ensurePath(conn, lockRoot); err != nil {
		return nil, err
	}
	lockPath := lockRoot + "/" + sku
	if err := ensurePath(conn, lockPath); err != nil {
		return nil, err
	}
	return &SKULock{conn: conn, path: lockPath}, nil
}

func ensurePath(conn *Conn, path string) error {
	// 逐级创建，父节点可能尚不存在
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	current := ""
	for _, part := range parts {
		current += "/" + part
		if exists, _, err := conn.Exists(current); err == nil && exists {
			continue
		}
		if _, err := conn.Create(current, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
			return fmt.Errorf("failed to create lock node %s: %w", current, err)
		}
	}
	return nil
}

// Lock 尝试获取锁，如果获取不到则阻塞等待。
func (l *SKULock) Lock() error {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 获取锁路径下的所有子节点
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		// 3. 判断自己是否是最小的节点
		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// 4. 不是最小节点，监听前一个节点
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		_, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			// 如果在前一个节点检查时它刚好被删除了，就重试循环
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(30 * time.Second): // 设置超时，防止死等
			return errors.New("timeout waiting for lock")
		}
	}
}

// Unlock 释放锁。
func (l *SKULock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
