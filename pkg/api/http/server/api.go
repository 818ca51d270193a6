package server

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api/http/common"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

const (
	wait = 30 * time.Second
)

type Server struct {
	addr       string
	tls        *tls.Config
	debug      bool
	log        logrus.FieldLogger
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server
}

// Router returns the routes serving svc.
func (s *Server) Router(svc api.API) *mux.Router {
	s.svc = svc

	router := mux.NewRouter()
	router.HandleFunc(common.API_HEALTH, s.Health).Methods(http.MethodGet)
	router.Handle(common.API_METRICS, promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc(common.API_UPLOADS, s.Upload).Methods(http.MethodPost)
	router.HandleFunc(common.API_QUEUES, s.Queues).Methods(http.MethodGet)
	router.HandleFunc(common.API_REDRIVE, s.Redrive).Methods(http.MethodPost)

	if s.debug {
		s.log.Debug("adding per-request logging middleware")
		router.Use(loggingMiddleware(s.log))
	}
	return router
}

// ServeForever serves svc until Close is called or we're interrupted.
func (s *Server) ServeForever(svc api.API) error {
	s.httpserver = &http.Server{
		Handler:      s.Router(svc),
		Addr:         s.addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
		TLSConfig:    s.tls,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{"addr": s.httpserver.Addr, "tls": s.tls != nil}).Info("listening")
		var err error
		if s.tls != nil {
			err = s.httpserver.ListenAndServeTLS("", "")
		} else {
			err = s.httpserver.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	signal.Notify(s.exit, os.Interrupt)
	defer signal.Stop(s.exit)

	select {
	case err := <-errs:
		return err
	case <-s.exit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return s.httpserver.Shutdown(ctx)
}

// Upload accepts a multipart form holding an image & who it belongs to.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, common.MaxUploadBytes)
	err := r.ParseMultipartForm(common.MaxUploadBytes)
	if err != nil {
		http.Error(w, err.Error(), statusOr(err, http.StatusBadRequest))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(common.FieldFile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), statusOr(err, http.StatusBadRequest))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	resp, err := s.svc.Upload(r.Context(), &structs.Upload{
		Data:          data,
		ContentType:   contentType,
		Filename:      header.Filename,
		OwnerID:       r.FormValue(common.FieldOwnerID),
		NotifyAddress: r.FormValue(common.FieldNotifyAddress),
		FirstName:     r.FormValue(common.FieldFirstName),
		LastName:      r.FormValue(common.FieldLastName),
		Title:         r.FormValue(common.FieldTitle),
	})
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	writeJson(w, http.StatusAccepted, resp)
}

func (s *Server) Queues(w http.ResponseWriter, r *http.Request) {
	depths, err := s.svc.Depths(r.Context())
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}
	writeJson(w, http.StatusOK, depths)
}

func (s *Server) Redrive(w http.ResponseWriter, r *http.Request) {
	req := &structs.RedriveRequest{}
	err := unmarshalJson(w, r, req)
	if err != nil {
		return
	}

	summary, err := s.svc.Redrive(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}
	if s.debug {
		s.log.WithField("attempted", summary.Attempted).Debug("redrive via api")
	}
	writeJson(w, http.StatusOK, summary)
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]bool{"ok": true})
}

// NewServer returns a server listening on addr. If tlsCfg is given we serve https.
func NewServer(addr string, tlsCfg *tls.Config, debug bool, log logrus.FieldLogger) *Server {
	return &Server{
		addr:  addr,
		tls:   tlsCfg,
		debug: debug,
		log:   log.WithField("component", "http"),
		exit:  make(chan os.Signal, 1),
	}
}

// statusOr maps oversized bodies to 413, anything else to def.
func statusOr(err error, def int) int {
	if code := mapError(err); code == http.StatusRequestEntityTooLarge {
		return code
	}
	return def
}
