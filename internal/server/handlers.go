package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sanonone/tempwalk/pkg/dataset"
	"github.com/sanonone/tempwalk/pkg/persistence"
	"github.com/sanonone/tempwalk/pkg/walk"
)

// maxRecordBatches caps a single POST /record task.
const maxRecordBatches = 1_000_000

// registerHTTPHandlers sets up the protected routes.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /walks", s.handleWalks)
	mux.HandleFunc("GET /dataset", s.handleDataset)
	mux.HandleFunc("POST /record", s.handleRecord)
	mux.HandleFunc("GET /tasks/{id}", s.handleGetTask)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WalksResponse is the body of GET /walks.
type WalksResponse struct {
	Seed    uint64          `json:"seed"`
	Shape   [3]int          `json:"shape"`
	Batches [][][][]float64 `json:"batches"`
}

func (s *Server) handleWalks(w http.ResponseWriter, r *http.Request) {
	n := 1
	if v := r.URL.Query().Get("batches"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxBatchesPerRequest {
			s.writeHTTPError(w, http.StatusBadRequest,
				fmt.Sprintf("batches must be an integer in [1, %d]", maxBatchesPerRequest))
			return
		}
		n = parsed
	}

	s.walkerMu.Lock()
	defer s.walkerMu.Unlock()

	resp := WalksResponse{Seed: s.walker.Seed()}
	for range n {
		b, err := s.walker.Next(r.Context())
		if err != nil {
			s.writeSampleError(w, err)
			return
		}
		resp.Shape = b.Shape()
		resp.Batches = append(resp.Batches, b.Slices())
	}
	s.writeHTTPResponse(w, http.StatusOK, resp)
}

// DatasetResponse is the body of GET /dataset.
type DatasetResponse struct {
	dataset.Summary
	QualifyingDays []int       `json:"qualifying_days"`
	Walker         walk.Config `json:"walker"`
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, DatasetResponse{
		Summary:        dataset.Summarize(s.edges),
		QualifyingDays: s.sampler.QualifyingDays(),
		Walker:         s.sampler.Config(),
	})
}

// RecordRequest is the body of POST /record.
type RecordRequest struct {
	Batches   int                   `json:"batches"`
	Precision persistence.Precision `json:"precision,omitempty"`
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Batches < 1 || req.Batches > maxRecordBatches {
		s.writeHTTPError(w, http.StatusBadRequest,
			fmt.Sprintf("batches must be in [1, %d]", maxRecordBatches))
		return
	}
	if req.Precision == "" {
		req.Precision = s.opts.Precision
	}

	task := s.taskManager.NewTask()
	rw := walk.NewWalkerWithSeed(s.sampler, recordSeed(s.walker.Seed(), s.recordSeq.Add(1)))
	header := persistence.NewHeader(s.sampler.Config(), rw.Seed(), s.edges.MaxNode(), req.Precision)
	path := taskPath(s.opts.RecordPath, task.ID)
	task.SetPath(path)

	rec, err := persistence.NewBatchRecorder(path, header)
	if err != nil {
		task.SetError(err)
		status := http.StatusInternalServerError
		if errors.Is(err, persistence.ErrUnknownPrecision) || errors.Is(err, persistence.ErrPrecisionLoss) {
			status = http.StatusBadRequest
		}
		s.writeHTTPError(w, status, err.Error())
		return
	}

	s.tasksWG.Add(1)
	go s.runRecordTask(task, rw, rec, req.Batches)

	s.writeHTTPResponse(w, http.StatusAccepted, task.View())
}

func (s *Server) runRecordTask(task *Task, rw *walk.Walker, rec *persistence.BatchRecorder, n int) {
	defer s.tasksWG.Done()
	defer rec.Close()

	task.SetStatus(TaskStatusRunning)
	for i := range n {
		b, err := rw.Next(s.ctx)
		if err == nil {
			err = rec.Record(b)
		}
		if err != nil {
			slog.Error("record task failed", "task", task.ID, "batch", i, "error", err)
			task.SetError(err)
			return
		}
		if (i+1)%1000 == 0 {
			task.SetProgress(fmt.Sprintf("%d/%d batches", i+1, n), i+1)
		}
	}
	if err := rec.Sync(); err != nil {
		task.SetError(err)
		return
	}
	task.SetProgress(fmt.Sprintf("%d/%d batches", n, n), n)
	task.SetStatus(TaskStatusCompleted)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.taskManager.GetTask(r.PathValue("id"))
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, task.View())
}

// recordSeed derives the seed of the seq-th record task from the served
// walker's seed. Tasks never replay the served stream or each other, and a
// fixed walker seed still yields a reproducible sequence of recordings.
// The seed is stored in the recording header.
func recordSeed(base, seq uint64) uint64 {
	return rand.New(rand.NewPCG(base, seq)).Uint64()
}

// taskPath derives a per-task file name from the configured recording path.
func taskPath(base, id string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + id + ext
}

func (s *Server) writeSampleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeHTTPError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
