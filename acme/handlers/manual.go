package handlers

import (
	"fmt"
	"io"
	"os"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/resources"
)

func init() {
	Register("manual", manualProvider{})
}

// manualProvider builds handlers that print the proof material as operator
// instructions instead of publishing it anywhere. It supports every
// challenge type and is the default when no automated provider fits.
type manualProvider struct{}

const (
	writeToStdout = "STDOUT"
	writeToStderr = "STDERR"
	writeToFile   = "FILE"

	fileModeAppend    = "append"
	fileModeOverwrite = "overwrite"
	fileModeCreateNew = "createNew"
)

func (manualProvider) IsSupported(chall *resources.Challenge) bool {
	switch chall.Type {
	case acme.ChallengeTypeDNS01, acme.ChallengeTypeHTTP01, acme.ChallengeTypeTLSSNI01:
		return true
	}
	return false
}

func (manualProvider) Params() []ParameterDetail {
	return []ParameterDetail{
		{
			Name:        "writeTo",
			Description: `Where to write the instructions: "STDOUT" (default), "STDERR" or "FILE"`,
		},
		{
			Name:        "fileName",
			Description: `Path of the instructions file. Required when writeTo is "FILE"`,
		},
		{
			Name:        "fileMode",
			Description: `How to open the file: "append" (default), "overwrite" or "createNew"`,
		},
	}
}

func (manualProvider) GetHandler(chall *resources.Challenge, params Params) (Handler, error) {
	writeTo := params.String("writeTo")
	if writeTo == "" {
		writeTo = writeToStdout
	}

	switch writeTo {
	case writeToStdout:
		return &manualHandler{out: os.Stdout}, nil
	case writeToStderr:
		return &manualHandler{out: os.Stderr}, nil
	case writeToFile:
		fileName := params.String("fileName")
		if fileName == "" {
			return nil, MissingParameterError{Name: "fileName"}
		}
		flags := os.O_WRONLY | os.O_CREATE
		switch mode := params.String("fileMode"); mode {
		case "", fileModeAppend:
			flags |= os.O_APPEND
		case fileModeOverwrite:
			flags |= os.O_TRUNC
		case fileModeCreateNew:
			flags |= os.O_EXCL
		default:
			return nil, fmt.Errorf("unknown fileMode %q", mode)
		}
		f, err := os.OpenFile(fileName, flags, 0644)
		if err != nil {
			return nil, err
		}
		return &manualHandler{out: f, closer: f}, nil
	}
	return nil, fmt.Errorf("unknown writeTo destination %q", writeTo)
}

// manualHandler writes publish/retract instructions to its output. When the
// output is a file the handler owns it and Close releases it.
type manualHandler struct {
	out    io.Writer
	closer io.Closer
	closed bool
}

func (h *manualHandler) Handle(chall *resources.Challenge) error {
	if h.closed {
		return ErrHandlerClosed
	}
	if err := checkDecoded(chall); err != nil {
		return err
	}
	return h.write("publish", chall)
}

func (h *manualHandler) CleanUp(chall *resources.Challenge) error {
	if h.closed {
		return ErrHandlerClosed
	}
	if err := checkDecoded(chall); err != nil {
		return err
	}
	return h.write("retract", chall)
}

func (h *manualHandler) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if h.closer != nil {
		return h.closer.Close()
	}
	return nil
}

func (h *manualHandler) write(action string, chall *resources.Challenge) error {
	details := chall.Details
	var err error
	switch {
	case details.DNS != nil:
		_, err = fmt.Fprintf(h.out,
			"%s %s record %q with value %q\n",
			action, details.DNS.RecordType, details.DNS.RecordName, details.DNS.RecordValue)
	case details.HTTP != nil:
		_, err = fmt.Fprintf(h.out,
			"%s file %q (served at %s) with content %q\n",
			action, details.HTTP.FilePath, details.HTTP.FileURL, details.HTTP.FileContent)
	case details.TLSSNI != nil:
		_, err = fmt.Fprintf(h.out,
			"%s a self-signed certificate with SAN %q (key authorization %q)\n",
			action, details.TLSSNI.ZDomain, details.TLSSNI.KeyAuthorization)
	default:
		err = fmt.Errorf("challenge %q has no proof details for type %q", chall.URI, details.ChallengeType)
	}
	return err
}
