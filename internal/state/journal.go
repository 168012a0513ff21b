// internal/state/journal.go
package state

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/terryso/proxycast/internal/types"
)

// Journal is a JSONL-backed append-only log of applied stream events,
// kept per session for post-hoc debugging of a generation. It is a
// best-effort facility: callers log and ignore append failures.
type Journal struct {
	root  string
	mu    sync.Mutex
	locks map[types.SessionID]*sync.Mutex
	seqs  map[types.SessionID]int64
}

// JournalEntry is one recorded event with its sequence number.
type JournalEntry struct {
	Seq   int64             `json:"seq"`
	At    time.Time         `json:"at"`
	Event types.StreamEvent `json:"event"`
}

// NewJournal creates a file-backed Journal rooted at the given
// directory.
func NewJournal(root string) *Journal {
	return &Journal{
		root:  root,
		locks: make(map[types.SessionID]*sync.Mutex),
		seqs:  make(map[types.SessionID]int64),
	}
}

// getLock returns the per-session mutex, creating one if needed.
func (j *Journal) getLock(id types.SessionID) *sync.Mutex {
	j.mu.Lock()
	defer j.mu.Unlock()
	if lock, ok := j.locks[id]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	j.locks[id] = lock
	return lock
}

func (j *Journal) eventsPath(id types.SessionID) string {
	return filepath.Join(j.root, "sessions", string(id), "events.jsonl")
}

// nextSeq returns the next sequence number for the session, counting
// existing lines on first use. Caller must hold the session lock.
func (j *Journal) nextSeq(id types.SessionID) (int64, error) {
	j.mu.Lock()
	seq, ok := j.seqs[id]
	j.mu.Unlock()
	if !ok {
		f, err := os.Open(j.eventsPath(id))
		if err != nil {
			if !os.IsNotExist(err) {
				return 0, fmt.Errorf("open journal: %w", err)
			}
		} else {
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				seq++
			}
			f.Close()
			if err := scanner.Err(); err != nil {
				return 0, fmt.Errorf("scan journal: %w", err)
			}
		}
	}
	seq++
	j.mu.Lock()
	j.seqs[id] = seq
	j.mu.Unlock()
	return seq, nil
}

// Append records an event for the session with an auto-incremented
// sequence number.
func (j *Journal) Append(id types.SessionID, ev types.StreamEvent) error {
	lock := j.getLock(id)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(j.eventsPath(id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	seq, err := j.nextSeq(id)
	if err != nil {
		return err
	}

	entry := JournalEntry{Seq: seq, At: time.Now(), Event: ev}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	f, err := os.OpenFile(j.eventsPath(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	return nil
}

// Tail returns the last N entries for the session.
func (j *Journal) Tail(id types.SessionID, limit int) ([]JournalEntry, error) {
	lock := j.getLock(id)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(j.eventsPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var entries []JournalEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry JournalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}

	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
