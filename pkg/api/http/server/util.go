package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

var (
	errmap map[int][]error = map[int][]error{
		http.StatusBadRequest: []error{
			ie.ErrMalformedJob,
			ie.ErrMaxExceeded,
			ie.ErrInvalidArg,
			ie.ErrNotSupported,
		},
		http.StatusNotFound: []error{
			ie.ErrNotFound,
		},
	}
)

// mapError returns the http status code for a given error from the pipeline, or
// http.StatusInternalServerError if the error is not recognised.
func mapError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return http.StatusRequestEntityTooLarge
	}
	for code, errs := range errmap {
		for _, e := range errs {
			if errors.Is(err, e) {
				return code
			}
		}
	}
	return http.StatusInternalServerError
}

// unmarshalJson reads the body of a request and attempts to unmarshal it into the given object.
// An empty body leaves obj as is.
// This function write an error to the writer if an error occurs, and returns the error.
func unmarshalJson(w http.ResponseWriter, r *http.Request, obj interface{}) error {
	if r.Body == nil {
		return nil
	}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields() // catch unwanted fields

	err := d.Decode(obj)
	if errors.Is(err, io.EOF) {
		return nil
	} else if err != nil {
		// bad JSON or unrecognized json field
		http.Error(w, err.Error(), http.StatusBadRequest)
		return fmt.Errorf("bad json: %v", err)
	}

	return nil
}

func writeJson(w http.ResponseWriter, code int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(obj)
}
