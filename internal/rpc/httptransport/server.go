// Package httptransport is one concrete, transport-agnostic-contract-
// satisfying realization of internal/rpc: HTTP/1.1 with JSON bodies,
// routed with httprouter. Nothing in the sync decision logic or the
// rpc.Client interface depends on this package.
package httptransport

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/surfsync/surfsync/internal/blockstore"
	"github.com/surfsync/surfsync/internal/logger"
	"github.com/surfsync/surfsync/internal/metastore"
	"github.com/surfsync/surfsync/internal/metrics"
	"github.com/surfsync/surfsync/internal/surfproto"
)

// Server implements the five SurfSync RPCs as HTTP handlers over a
// BlockStore and a MetaStore.
type Server struct {
	blocks  *blockstore.Store
	files   *metastore.Store
	metrics *metrics.Registry
	router  *httprouter.Router
}

func NewServer(blocks *blockstore.Store, files *metastore.Store, reg *metrics.Registry) *Server {
	s := &Server{blocks: blocks, files: files, metrics: reg}
	r := httprouter.New()
	r.POST("/ping", s.handlePing)
	r.POST("/block/get", s.handleGetBlock)
	r.POST("/block/store", s.handleStoreBlock)
	r.GET("/fileinfo", s.handleGetFileInfoMap)
	r.POST("/fileinfo/update", s.handleUpdateFile)
	if reg != nil {
		r.Handler(http.MethodGet, "/metrics", reg.Handler())
	}
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) track(op string) (fail *bool, done func()) {
	f := false
	if s.metrics == nil {
		return &f, func() {}
	}
	return &f, s.metrics.Track(op, &f)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fail, done := s.track("ping")
	defer done()
	_ = fail
	logger.DefaultLogger.Debugf("ping()")
	w.WriteHeader(http.StatusOK)
}

type getBlockRequest struct {
	Hash string `json:"hash"`
}

type getBlockResponse struct {
	Data  string `json:"data"` // base64, empty string if not found
	Found bool   `json:"found"`
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fail, done := s.track("get_block")
	defer done()

	var req getBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		*fail = true
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	logger.DefaultLogger.Debugf("get_block(%s)", req.Hash)
	data, found := s.blocks.Get(r.Context(), req.Hash)
	if !found {
		logger.DefaultLogger.Warnf("get_block: hash %s not bound", req.Hash)
	}

	resp := getBlockResponse{Found: found}
	if found {
		resp.Data = base64.StdEncoding.EncodeToString(data)
	}
	writeJSON(w, resp)
}

type storeBlockRequest struct {
	Hash string `json:"hash"`
	Data string `json:"data"` // base64
}

func (s *Server) handleStoreBlock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fail, done := s.track("store_block")
	defer done()

	var req storeBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		*fail = true
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		*fail = true
		http.Error(w, "bad base64", http.StatusBadRequest)
		return
	}

	logger.DefaultLogger.Debugf("store_block(%s)", req.Hash)
	if err := s.blocks.Put(r.Context(), req.Hash, data); err != nil {
		*fail = true
		logger.DefaultLogger.Errorf("store_block(%s): %v", req.Hash, err)
		http.Error(w, "store failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetFileInfoMap(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	_, done := s.track("get_fileinfo_map")
	defer done()

	logger.DefaultLogger.Debugf("get_fileinfo_map()")
	writeJSON(w, s.files.Snapshot())
}

type updateFileRequest struct {
	Filename string   `json:"filename"`
	Version  int      `json:"version"`
	Hashlist []string `json:"hashlist"`
}

type updateFileResponse struct {
	Accepted bool `json:"accepted"`
}

func (s *Server) handleUpdateFile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fail, done := s.track("update_file")
	defer done()

	var req updateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		*fail = true
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	fi := surfproto.FileInfo{Version: req.Version, Hashlist: req.Hashlist}
	accepted := s.files.UpdateFile(req.Filename, fi)
	if !accepted {
		*fail = true
		logger.DefaultLogger.Warnf("update_file(%s, v%d): version conflict", req.Filename, req.Version)
	} else {
		logger.DefaultLogger.Debugf("update_file(%s, v%d): accepted", req.Filename, req.Version)
	}
	writeJSON(w, updateFileResponse{Accepted: accepted})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
