package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sheikh-saqib/statement-ledger-api/internal/config"
	"github.com/sheikh-saqib/statement-ledger-api/internal/storage/memory"
)

func TestNewWithoutDSNUsesMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(context.Background(), config.Config{}, logger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()

	if _, ok := s.Statements.(*memory.MemoryStatementStore); !ok {
		t.Fatalf("statements got=%T want *memory.MemoryStatementStore", s.Statements)
	}
	if _, ok := s.Users.(*memory.MemoryUserDirectory); !ok {
		t.Fatalf("users got=%T want *memory.MemoryUserDirectory", s.Users)
	}
}
