package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/psephology/psephos/feature"
	featurejson "github.com/psephology/psephos/feature/json"
	"github.com/psephology/psephos/tree"
	treejson "github.com/psephology/psephos/tree/json"
	"github.com/psephology/psephos/tree/redisstore"
	redis "gopkg.in/redis.v5"
)

const defaultRedisTreePrefix = "psephos"

/*
loadTree takes a context, a tree reference and a slice of features and
returns the referenced tree. A redis:// URL opens the tree on a Redis
node store, any other reference is taken as the path to a file from
which the tree is parsed as JSON.
*/
func loadTree(ctx context.Context, rawurl string, features []feature.Feature) (*tree.Tree, error) {
	if strings.HasPrefix(rawurl, "redis://") {
		rc, prefix, err := redisClient(rawurl)
		if err != nil {
			return nil, err
		}
		rootID, err := rc.Get(fmt.Sprintf("%s:root", prefix)).Result()
		if err == redis.Nil {
			return nil, fmt.Errorf("no tree stored at %s", rawurl)
		}
		if err != nil {
			return nil, fmt.Errorf("reading tree root from %s: %v", rawurl, err)
		}
		labelName, err := rc.Get(fmt.Sprintf("%s:label", prefix)).Result()
		if err != nil {
			return nil, fmt.Errorf("reading tree label from %s: %v", rawurl, err)
		}
		var label feature.Feature
		for _, f := range features {
			if f.Name() == labelName {
				label = f
				break
			}
		}
		if label == nil {
			return nil, fmt.Errorf("tree label feature '%s' is not defined on the metadata", labelName)
		}
		ns := redisstore.New(rc, prefix, nodeEncodeDecoder(features))
		return tree.New(rootID, ns, label), nil
	}
	f, err := os.Open(rawurl)
	if err != nil {
		return nil, fmt.Errorf("reading tree in JSON from %s: %v", rawurl, err)
	}
	defer f.Close()
	t := &tree.Tree{NodeStore: tree.NewMemoryNodeStore()}
	err = treejson.ReadJSONTree(ctx, t, nodeEncodeDecoder(features), features, f)
	if err != nil {
		return nil, fmt.Errorf("parsing tree in JSON from %s: %v", rawurl, err)
	}
	return t, nil
}

/*
treeNodeStore takes a tree reference and a slice of features and
returns the node store a new tree should be grown on for that
reference: a Redis node store for a redis:// URL, an in-memory one
for anything else.
*/
func treeNodeStore(rawurl string, features []feature.Feature) (tree.NodeStore, error) {
	if strings.HasPrefix(rawurl, "redis://") {
		rc, prefix, err := redisClient(rawurl)
		if err != nil {
			return nil, err
		}
		return redisstore.New(rc, prefix, nodeEncodeDecoder(features)), nil
	}
	return tree.NewMemoryNodeStore(), nil
}

/*
saveTree takes a context, a tree, a tree reference and a slice of
features and persists the tree on the reference. For a redis:// URL
the tree nodes are expected to already live on the Redis node store
the tree was grown on, so only the root ID and label are stored. For
anything else the tree is written as JSON, to the referenced file
path or to STDOUT when the reference is empty.
*/
func saveTree(ctx context.Context, t *tree.Tree, rawurl string, features []feature.Feature) error {
	if strings.HasPrefix(rawurl, "redis://") {
		rc, prefix, err := redisClient(rawurl)
		if err != nil {
			return err
		}
		err = rc.Set(fmt.Sprintf("%s:root", prefix), t.RootID, 0).Err()
		if err != nil {
			return fmt.Errorf("storing tree root on %s: %v", rawurl, err)
		}
		err = rc.Set(fmt.Sprintf("%s:label", prefix), t.Label.Name(), 0).Err()
		if err != nil {
			return fmt.Errorf("storing tree label on %s: %v", rawurl, err)
		}
		return nil
	}
	var f *os.File
	var err error
	if rawurl == "" {
		f = os.Stdout
	} else {
		f, err = os.Create(rawurl)
		if err != nil {
			return err
		}
	}
	defer f.Close()
	return treejson.WriteJSONTree(ctx, t, nodeEncodeDecoder(features), f)
}

func nodeEncodeDecoder(features []feature.Feature) treejson.NodeEncodeDecoder {
	return treejson.NewNodeEncodeDecoder(featurejson.NewCriteriaEncodeDecoder(features), features)
}

/*
redisClient takes a redis:// URL and returns a client for the
referenced Redis server together with the key prefix tree keys should
be stored under. The URL may carry a password, a database number as
its path and a prefix query parameter.
*/
func redisClient(rawurl string) (*redis.Client, string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, "", fmt.Errorf("parsing redis URL %s: %v", rawurl, err)
	}
	options := &redis.Options{Addr: u.Host}
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			options.Password = password
		}
	}
	if dbPath := strings.Trim(u.Path, "/"); dbPath != "" {
		db, err := strconv.Atoi(dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("parsing redis URL %s: invalid database number %q", rawurl, dbPath)
		}
		options.DB = db
	}
	prefix := u.Query().Get("prefix")
	if prefix == "" {
		prefix = defaultRedisTreePrefix
	}
	return redis.NewClient(options), prefix, nil
}
