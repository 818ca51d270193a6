package main

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api/http/client"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

const (
	docUpload = `Upload an image to the API server`
)

type optsUpload struct {
	Remote    string `long:"remote" env:"API_URL" description:"API server address" default:"http://localhost:8100"`
	Owner     string `long:"owner" env:"OWNER_ID" description:"Owner of the image" required:"true"`
	Email     string `long:"email" description:"Where to send progress emails"`
	FirstName string `long:"first-name" description:"Owner first name, used in the watermark"`
	LastName  string `long:"last-name" description:"Owner last name, used in the watermark"`
	Title     string `long:"title" description:"Image title"`

	Args struct {
		File string `positional-arg-name:"file" description:"Image to upload"`
	} `positional-args:"yes" required:"yes"`
}

func (c *optsUpload) Execute(args []string) error {
	data, err := os.ReadFile(c.Args.File)
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(c.Args.File))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	cli, err := client.New(c.Remote)
	if err != nil {
		return err
	}
	resp, err := cli.Upload(context.Background(), &structs.Upload{
		Data:          data,
		ContentType:   contentType,
		Filename:      filepath.Base(c.Args.File),
		OwnerID:       c.Owner,
		NotifyAddress: c.Email,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Title:         c.Title,
	})
	if err != nil {
		return err
	}
	return printJson(resp)
}
