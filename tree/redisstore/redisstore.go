/*
Package redisstore provides a tree.NodeStore implementation with a
Redis database as backend, so that grown trees can be shared between
analysis runs without re-fitting.
*/
package redisstore

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/psephology/psephos/tree"
	redis "gopkg.in/redis.v5"
)

// length in bytes of the random part of generated node IDs
const nodeIDBytes = 10

/*
NodeEncodeDecoder serializes nodes to the byte slices
stored as Redis values and parses them back.
*/
type NodeEncodeDecoder interface {

	//Encode returns the given node serialized as a
	//slice of bytes, or an error if the node cannot
	//be serialized.
	Encode(*tree.Node) ([]byte, error)

	//Decode parses a slice of bytes produced by Encode
	//back into a node, or returns an error if the data
	//cannot be parsed.
	Decode([]byte) (*tree.Node, error)
}

type redisStore struct {
	rc      *redis.Client
	prefix  string
	nencdec NodeEncodeDecoder
}

/*
New builds a tree.NodeStore on the given Redis client. Every key the
store writes is namespaced under the given prefix, so several trees
can share one database.
*/
func New(rc *redis.Client, prefix string, nencdec NodeEncodeDecoder) tree.NodeStore {
	return &redisStore{rc: rc, prefix: prefix, nencdec: nencdec}
}

func (rs *redisStore) Create(ctx context.Context, n *tree.Node) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, err := newNodeID()
		if err != nil {
			return fmt.Errorf("creating node: %v", err)
		}
		n.ID = id
		data, err := rs.nencdec.Encode(n)
		if err != nil {
			return fmt.Errorf("creating node: encoding node: %v", err)
		}
		created, err := rs.rc.SetNX(rs.keyFor(n.ID), data, 0).Result()
		if err != nil {
			return fmt.Errorf("creating node in redis: %v", err)
		}
		if created {
			return nil
		}
	}
}

func (rs *redisStore) Get(ctx context.Context, id string) (*tree.Node, error) {
	data, err := rs.rc.Get(rs.keyFor(id)).Result()
	if err == redis.Nil || (err == nil && data == "") {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving node %q: %v", id, err)
	}
	n, err := rs.nencdec.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("retrieving node %q: decoding %q: %v", id, data, err)
	}
	return n, nil
}

func (rs *redisStore) Store(ctx context.Context, n *tree.Node) error {
	key := rs.keyFor(n.ID)
	data, err := rs.nencdec.Encode(n)
	if err != nil {
		return fmt.Errorf("storing node %q: encoding node: %v", key, err)
	}
	if _, err = rs.rc.Set(key, data, 0).Result(); err != nil {
		return fmt.Errorf("storing node %q in redis: %v", key, err)
	}
	return nil
}

func (rs *redisStore) Delete(ctx context.Context, n *tree.Node) error {
	key := rs.keyFor(n.ID)
	if _, err := rs.rc.Del(key).Result(); err != nil {
		return fmt.Errorf("deleting node %q from redis: %v", key, err)
	}
	return nil
}

func (rs *redisStore) Close(ctx context.Context) error {
	return rs.rc.Close()
}

func (rs *redisStore) keyFor(id string) string {
	return fmt.Sprintf("%s:nodes:%s", rs.prefix, id)
}

func newNodeID() (string, error) {
	b := make([]byte, nodeIDBytes)
	if _, err := cryptorand.Read(b); err != nil {
		return "", fmt.Errorf("generating node ID: %v", err)
	}
	return hex.EncodeToString(b), nil
}
