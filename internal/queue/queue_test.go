package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var at = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

func TestNewEventEnvelope(t *testing.T) {
	ev, err := NewEvent(TypeMaterialCreated, "mario", at, MaterialEvent{MaterialID: 3, DDTNumber: "A1"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if ev.OccurredAt != "2024-07-01T09:30:00Z" || ev.Actor != "mario" {
		t.Fatalf("unexpected envelope %+v", ev)
	}
	var m MaterialEvent
	if err := json.Unmarshal(ev.Data, &m); err != nil || m.DDTNumber != "A1" {
		t.Fatalf("payload %+v %v", m, err)
	}
}

func TestFormatLine(t *testing.T) {
	mid := uint64(4)
	cases := []struct {
		typ  string
		data any
		want string
	}{
		{TypeMaterialNonConformity, MaterialEvent{MaterialID: 9, DDTNumber: "D9", BatchNumber: "B", NonConformity: true, Notes: "bent"},
			`[2024-07-01T09:30:00Z] material.nonconformity | by=pm | material_id=9 | ddt="D9" | batch="B" | non_conformity=true | notes="bent"`},
		{TypeDocumentUploaded, DocumentEvent{DocumentID: 2, FilePath: "uploads/a.pdf", FileType: "pdf", MaterialID: &mid},
			`[2024-07-01T09:30:00Z] document.uploaded | by=pm | document_id=2 | path="uploads/a.pdf" | type=pdf | material_id=4 | log_id=-`},
		{TypeOverdueDigest, DigestEvent{OverallProgressPercent: 42.5, OverdueMilestones: 2, Overdue: []string{"Piling", "Cabling"}},
			`[2024-07-01T09:30:00Z] progress.overdue_digest | by=pm | overall=42.50% | overdue=2 [Piling,Cabling]`},
	}
	for _, tc := range cases {
		ev, _ := NewEvent(tc.typ, "pm", at, tc.data)
		got, err := FormatLine(ev)
		if err != nil {
			t.Fatalf("%s: %v", tc.typ, err)
		}
		if got != tc.want {
			t.Fatalf("%s:\n got %s\nwant %s", tc.typ, got, tc.want)
		}
	}

	if _, err := FormatLine(Event{Type: "inverter.tripped", Data: json.RawMessage("{}")}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestConsumerHandleAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := &Consumer{LogDir: dir, Log: zerolog.Nop()}

	for _, id := range []uint64{1, 2} {
		ev, _ := NewEvent(TypeDocumentDeleted, "", at, DocumentEvent{DocumentID: id, FilePath: "p", FileType: "photo"})
		body, _ := json.Marshal(ev)
		if err := c.Handle(body); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	b, err := os.ReadFile(filepath.Join(dir, EventLogFile))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "document_id=2") {
		t.Fatalf("unexpected log contents %q", b)
	}

	if err := c.Handle([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
