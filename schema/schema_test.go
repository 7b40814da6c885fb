package schema

import (
	"reflect"
	"testing"
)

func TestWorkerRoundTrip(t *testing.T) {
	w := Worker{
		WorkerID: "uuid-1", WorkerName: "alpha", LastHeartbeat: "2026-08-03T00:00:00Z",
		Status: WorkerActive, TasksProcessed: 3, SourcesProcessed: 1,
	}
	got := WorkerFromRow(w.ToRow())
	if !reflect.DeepEqual(got, w) {
		t.Fatalf("round trip = %+v, want %+v", got, w)
	}
}

func TestWorkerUnknownStatusDecodesToSentinel(t *testing.T) {
	row := []string{"id", "name", "ts", "SUSPENDED", "0", "0"}
	got := WorkerFromRow(row)
	if got.Status != WorkerUnknown {
		t.Fatalf("Status = %q, want %q", got.Status, WorkerUnknown)
	}
}

func TestSourceRoundTrip(t *testing.T) {
	s := Source{
		ID: "s1", URL: "https://youtube.com/playlist?list=X", Name: "X",
		VideoCount: "3", ClaimedAt: "t1", CompletedAt: "t2",
		Status: Done, AssignedWorker: "w1",
	}
	got := SourceFromRow(s.ToRow())
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("round trip = %+v, want %+v", got, s)
	}
}

func TestSourceDLQRoundTrip(t *testing.T) {
	s := Source{ID: "s1", URL: "u", Status: Failed, Error: "network down"}
	got := SourceFromDLQRow(s.ToDLQRow())
	if got.Error != "network down" {
		t.Fatalf("Error = %q, want %q", got.Error, "network down")
	}
	if got.Status != Failed {
		t.Fatalf("Status = %q, want %q", got.Status, Failed)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	task := Task{
		ID: "vvvvvvvvvvv", SourceID: "s1", URL: "u", Name: "n", Duration: "10",
		CreatedAt: "c", ClaimedAt: "cl", CompletedAt: "co",
		Status: Pending, AssignedWorker: "",
	}
	got := TaskFromRow(task.ToRow())
	if !reflect.DeepEqual(got, task) {
		t.Fatalf("round trip = %+v, want %+v", got, task)
	}
}

func TestTaskDecodePadsMissingTrailingColumns(t *testing.T) {
	row := []string{"id", "src"}
	got := TaskFromRow(row)
	if got.Status != Unknown {
		t.Fatalf("Status = %q, want %q (missing column padded)", got.Status, Unknown)
	}
	if got.AssignedWorker != "" {
		t.Fatalf("AssignedWorker = %q, want empty", got.AssignedWorker)
	}
}

func TestLeaseRoundTrip(t *testing.T) {
	l := Lease{ElectionName: "source_processor", Holder: "w1", ExpiresAt: "123.456"}
	got := LeaseFromRow(l.ToRow())
	if !reflect.DeepEqual(got, l) {
		t.Fatalf("round trip = %+v, want %+v", got, l)
	}
}
