package service

import (
	"context"
	"sync"

	"github.com/ruchit2005/JustiX-AI-Model/llm"
)

// fakeEmbedder returns a fixed unit vector for any text, or a scripted
// error.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string, _ llm.EmbedTask) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

// generateCall records one Generate invocation.
type generateCall struct {
	System      string
	Prompt      string
	Temperature float32
}

// fakeGenerator replays scripted replies in order, repeating the last one
// once the script runs out.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []generateCall
}

func (f *fakeGenerator) Generate(_ context.Context, system, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, generateCall{System: system, Prompt: prompt, Temperature: temperature})
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeGenerator) lastCall() generateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return generateCall{}
	}
	return f.calls[len(f.calls)-1]
}
