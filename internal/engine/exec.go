package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
)

// captureMax caps buffered tool output; anything past it is dropped, not an
// error.
const captureMax = 1 << 20

// limitedBuffer captures up to max bytes and swallows the rest. Safe for the
// two writer goroutines exec may spawn for stdout and stderr.
type limitedBuffer struct {
	mu        sync.Mutex
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(p)
	remain := b.max - b.buf.Len()
	if remain > 0 {
		if remain > len(p) {
			remain = len(p)
		}
		_, _ = b.buf.Write(p[:remain])
	}
	if len(p) > remain {
		b.truncated = true
	}
	return n, nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewExecRunner returns the production Runner: child processes started in
// dir, output captured always and additionally forwarded live in streaming
// mode.
func NewExecRunner(dir string) Runner {
	return func(ctx context.Context, argv []string, streaming bool) RunResult {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = dir

		buf := &limitedBuffer{max: captureMax}
		if streaming {
			cmd.Stdout = io.MultiWriter(os.Stdout, buf)
			cmd.Stderr = io.MultiWriter(os.Stderr, buf)
			cmd.Stdin = os.Stdin
		} else {
			cmd.Stdout = buf
			cmd.Stderr = buf
		}

		err := cmd.Run()
		res := RunResult{Output: buf.String()}
		if err == nil {
			return res
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res
		}
		res.ExitCode = -1
		res.Err = err
		return res
	}
}
