package main

import (
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/utils"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api"
)

const (
	docWorker = `Run a worker processing queued image jobs`
)

type optsWorker struct {
	optsGeneral
	optsQueue
	optsSupabase
	optsBlob
	optsDatabase
	optsMail
}

func (c *optsWorker) Execute(args []string) error {
	log := utils.NewLogger(c.Debug)

	qOpts, err := c.optsQueue.options()
	if err != nil {
		return err
	}
	svc, err := newService(log, &api.Options{
		Queue:    qOpts,
		Blob:     c.optsBlob.options(&c.optsSupabase),
		Database: c.optsDatabase.options(&c.optsSupabase),
		Mail:     c.optsMail.options(),
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	worker, err := svc.Worker()
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()
	return worker.Run(ctx)
}
