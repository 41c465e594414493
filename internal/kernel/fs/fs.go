// Package fs declares the narrow interfaces this kernel core consumes from
// the file table and VFS (spec §6): file_dup, file_close, namei, iput,
// begin_op/end_op, and fsinit. Real filesystem and device-driver code is
// explicitly out of scope (spec §1); this package exists so exit() has
// something to call to release a process's open files and current working
// directory, and so forkret has something to call exactly once for "file
// system initialization" (spec §4.2).
package fs

// File is an open file reference, reference-counted the way xv6's
// struct file is: Dup bumps the refcount and returns a handle to the same
// open file, Close drops it and releases the underlying resource once it
// reaches zero.
type File interface {
	Dup() File
	Close()
}

// Inode is an opaque VFS node reference (namei's return value, iput's
// argument).
type Inode interface{}

// FileSystem is the narrow slice of VFS/device init this core calls into.
type FileSystem interface {
	// Namei resolves a path to an inode reference, used by userinit to set
	// the first process's cwd to "/".
	Namei(path string) (Inode, error)
	// Iput releases a reference obtained from Namei, used by exit to drop
	// a process's cwd.
	Iput(Inode)
	// BeginOp/EndOp bracket a filesystem transaction; exit() wraps its
	// Iput call in one (spec §6).
	BeginOp()
	EndOp()
	// Init performs filesystem initialization against the given root
	// device. Called exactly once, from forkret, never again (spec §4.2,
	// §6).
	Init(rootDev int) error
}
