// Package hash provides canonical-JSON fingerprinting and deterministic
// directory tree hashing used to key the content-addressed store.
package hash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Fingerprint serializes value as canonical JSON (sorted object keys, no
// extraneous whitespace) and returns the hex-encoded SHA-256 of the bytes.
func Fingerprint(value any) (string, error) {
	canon, err := canonicalize(value)
	if err != nil {
		return "", fmt.Errorf("hash: canonicalize: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(canon); err != nil {
		return "", fmt.Errorf("hash: encode: %w", err)
	}

	sum := sha256.Sum256(bytes.TrimRight(buf.Bytes(), "\n"))
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize round-trips value through encoding/json so that structs and
// maps alike, at every nesting level, are materialized as map[string]any.
// encoding/json sorts map keys on marshal, so the result encodes
// identically regardless of Go field declaration order.
func canonicalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// TreeHash walks dir in deterministic order (files sorted by name within a
// directory, subdirectories visited after files, ".git" subtrees excluded)
// and returns the hex-encoded SHA-256 over each file's root-relative path
// followed by its content. Two walks of an identical tree always produce
// the same hash.
func TreeHash(dir string) (string, error) {
	h := sha256.New()
	if err := walkTree(h, dir, dir); err != nil {
		return "", fmt.Errorf("hash: tree_hash %s: %w", dir, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func walkTree(h interface{ Write([]byte) (int, error) }, root, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var files, subdirs []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			if e.Name() == ".git" {
				continue
			}
			subdirs = append(subdirs, e)
			continue
		}
		files = append(files, e)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
	sort.Slice(subdirs, func(i, j int) bool { return subdirs[i].Name() < subdirs[j].Name() })

	for _, f := range files {
		path := filepath.Join(dir, f.Name())
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(content)
	}

	for _, d := range subdirs {
		if err := walkTree(h, root, filepath.Join(dir, d.Name())); err != nil {
			return err
		}
	}

	return nil
}
