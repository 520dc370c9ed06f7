package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/paperchat/paperchat/internal/domain/chatModel"
	"github.com/paperchat/paperchat/internal/domain/docModel"
)

func TestBuildUserPrompt_RoleLabels(t *testing.T) {
	history := []chatModel.Message{
		{Text: "what is chapter 2 about?", IsUserMessage: true, CreatedAt: time.Now()},
		{Text: "Chapter 2 covers thermodynamics.", IsUserMessage: false, CreatedAt: time.Now()},
	}

	prompt := buildUserPrompt(history, nil, "and chapter 3?")

	if !strings.Contains(prompt, "User: what is chapter 2 about?") {
		t.Error("user turns must carry the literal User: label")
	}
	if !strings.Contains(prompt, "Assistant: Chapter 2 covers thermodynamics.") {
		t.Error("assistant turns must carry the literal Assistant: label")
	}
	if !strings.Contains(prompt, "USER INPUT: and chapter 3?") {
		t.Error("the new question must close the prompt")
	}
}

func TestBuildUserPrompt_ChunksInRetrievalOrder(t *testing.T) {
	chunks := []docModel.ScoredChunk{
		{Text: "first retrieved chunk", Score: 0.9},
		{Text: "second retrieved chunk", Score: 0.7},
		{Text: "third retrieved chunk", Score: 0.4},
	}

	prompt := buildUserPrompt(nil, chunks, "q")

	first := strings.Index(prompt, "first retrieved chunk")
	second := strings.Index(prompt, "second retrieved chunk")
	third := strings.Index(prompt, "third retrieved chunk")
	if first < 0 || second < 0 || third < 0 {
		t.Fatal("all chunks must appear in the prompt")
	}
	if !(first < second && second < third) {
		t.Error("chunks must keep their retrieval order")
	}
}

func TestBuildUserPrompt_EmptyHistoryAndContext(t *testing.T) {
	prompt := buildUserPrompt(nil, nil, "lonely question")

	if !strings.Contains(prompt, "PREVIOUS CONVERSATION:") {
		t.Error("conversation section header should be present even when empty")
	}
	if !strings.Contains(prompt, "CONTEXT:") {
		t.Error("context section header should be present even when empty")
	}
	if !strings.HasSuffix(prompt, "USER INPUT: lonely question") {
		t.Errorf("prompt should end with the question, got tail %q", prompt[max(0, len(prompt)-40):])
	}
}
