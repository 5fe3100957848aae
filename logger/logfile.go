package logger

import (
	"fmt"
	"os"
	"sync"
)

// LogFile provides writes into file with rotation by size
type LogFile struct {
	mu       sync.Mutex
	file     *os.File
	fileSize int64

	FilePath string
	// MaxSize in bytes, 0 turns off rotation
	MaxSize int64
	// Rotate defines how many rotated files are kept,
	// with 0 the file is truncated instead
	Rotate int
}

// Close implements io.Closer interface
func (f *LogFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Write implements io.Writer interface
func (f *LogFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		if err := f.open(); err != nil {
			return 0, err
		}
	}
	if f.MaxSize > 0 && f.fileSize > 0 && f.MaxSize < f.fileSize+int64(len(p)) {
		if err := f.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := f.file.Write(p)
	f.fileSize += int64(n)
	return n, err
}

func (f *LogFile) open() error {
	file, err := os.OpenFile(f.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	f.file, f.fileSize = file, 0
	if fileInfo, err := file.Stat(); err == nil {
		f.fileSize = fileInfo.Size()
	}
	return nil
}

func (f *LogFile) rotate() error {
	_ = f.file.Close()
	if f.Rotate == 0 {
		_ = os.Remove(f.FilePath)
	} else {
		for i := f.Rotate; i > 1; i-- {
			_ = os.Rename(fmt.Sprintf("%s.%d", f.FilePath, i-1), fmt.Sprintf("%s.%d", f.FilePath, i))
		}
		_ = os.Rename(f.FilePath, f.FilePath+".1")
	}
	return f.open()
}
