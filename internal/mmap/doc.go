// Package mmap provides read-only memory-mapped access to local files.
//
// Word vector files are commonly several gigabytes. Mapping them lets the
// loader scan the text with a single sequential pass and no intermediate
// buffering, while the kernel is told to read ahead aggressively.
//
//	m, err := mmap.Open("crawl-300d-2M.vec")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix: mmap(2) with madvise(2) hints via golang.org/x/sys/unix
//   - Windows: CreateFileMapping/MapViewOfFile (hints are a no-op)
//
// Close is idempotent. Callers must not touch Bytes() after Close returns.
package mmap
