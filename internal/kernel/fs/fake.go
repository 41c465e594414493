package fs

import (
	"fmt"
	"sync"
)

type fakeInode struct {
	path string
}

type fakeFile struct {
	mu   *sync.Mutex
	refs *int
	name string
}

func (f *fakeFile) Dup() File {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.refs++
	return &fakeFile{mu: f.mu, refs: f.refs, name: f.name}
}

func (f *fakeFile) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.refs--
}

// FakeFileSystem is an in-memory FileSystem sufficient to drive fork/exit
// tests: Namei always succeeds (creating the inode on first lookup), and
// Init counts its calls and returns an error on every call after the
// first, so tests can assert it ran exactly once.
type FakeFileSystem struct {
	mu        sync.Mutex
	inodes    map[string]*fakeInode
	initCount int
	opDepth   int
}

func NewFakeFileSystem() *FakeFileSystem {
	return &FakeFileSystem{inodes: make(map[string]*fakeInode)}
}

func (f *FakeFileSystem) Namei(path string) (Inode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.inodes[path]; ok {
		return n, nil
	}
	n := &fakeInode{path: path}
	f.inodes[path] = n
	return n, nil
}

func (f *FakeFileSystem) Iput(Inode) {}

func (f *FakeFileSystem) BeginOp() {
	f.mu.Lock()
	f.opDepth++
	f.mu.Unlock()
}

func (f *FakeFileSystem) EndOp() {
	f.mu.Lock()
	f.opDepth--
	f.mu.Unlock()
}

func (f *FakeFileSystem) Init(rootDev int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCount++
	if f.initCount > 1 {
		return fmt.Errorf("fs: Init called %d times, want exactly once", f.initCount)
	}
	return nil
}

// InitCount reports how many times Init has been called, for asserting the
// forkret "exactly once" contract.
func (f *FakeFileSystem) InitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCount
}

// NewFile returns a fresh reference-counted fake file handle.
func NewFile(name string) File {
	refs := 1
	return &fakeFile{mu: &sync.Mutex{}, refs: &refs, name: name}
}
