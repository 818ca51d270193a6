package main

import (
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/utils"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api/http/server"
)

const (
	docApi = `Run the API server`
)

type optsAPI struct {
	optsGeneral
	optsQueue
	optsSupabase
	optsBlob

	Addr    string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`
	TLSCert string `long:"cert" env:"CERT" description:"Path to TLS certificate"`
	TLSKey  string `long:"key" env:"KEY" description:"Path to TLS key"`
}

func (c *optsAPI) Execute(args []string) error {
	// The API server stages uploads & reports on the queues. It doesn't process jobs,
	// run workers alongside it for that.
	log := utils.NewLogger(c.Debug)

	tlsCfg, err := utils.ServerTLSConfig(c.TLSCert, c.TLSKey)
	if err != nil {
		return err
	}
	qOpts, err := c.optsQueue.options()
	if err != nil {
		return err
	}

	svc, err := newService(log, &api.Options{
		Queue: qOpts,
		Blob:  c.optsBlob.options(&c.optsSupabase),
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	s := server.NewServer(c.Addr, tlsCfg, c.Debug, log)
	return s.ServeForever(svc)
}
