package main

import (
	"context"
	"time"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/utils"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api/http/client"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

const (
	docRedrive = `Move dead lettered jobs back onto the job queue`

	redriveTask = "pipeline:redrive"
)

type optsRedrive struct {
	optsGeneral
	optsQueue
	optsSupabase
	optsBlob

	Max      int    `long:"max" env:"REDRIVE_MAX" description:"Most messages to move this run (capped by REDRIVE_MAX_PER_RUN)"`
	Schedule bool   `long:"schedule" description:"Keep running, redriving on REDRIVE_SCHEDULE"`
	Remote   string `long:"remote" env:"API_URL" description:"Ask the API server at this address to redrive instead"`
}

func (c *optsRedrive) Execute(args []string) error {
	log := utils.NewLogger(c.Debug)
	req := &structs.RedriveRequest{MaxMessages: c.Max}

	if c.Remote != "" {
		cli, err := client.New(c.Remote)
		if err != nil {
			return err
		}
		summary, err := cli.Redrive(context.Background(), req)
		if err != nil {
			return err
		}
		return printJson(summary)
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

	if !c.Schedule {
		summary, err := svc.Redrive(context.Background(), req)
		if err != nil {
			return err
		}
		return printJson(summary)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sched, err := cfg.Schedule()
	if err != nil {
		return err
	}

	sch, err := svc.Scheduler()
	if err != nil {
		return err
	}
	err = sch.Register(cfg.RedriveSchedule, redriveTask, func(ctx context.Context) error {
		_, err := svc.Redrive(ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	log.WithField("schedule", cfg.RedriveSchedule).WithField("next", sched.Next(time.Now()).Format(time.RFC3339)).Info("redrive scheduled")

	ctx, cancel := interruptContext()
	defer cancel()
	return sch.Run(ctx)
}
