// Command proxypost wraps a json payload in an api gateway proxy event and
// sends it to API_URL, or invokes FUNCTION_NAME with it, printing the json
// response.
//
//	proxypost [payload.json]
//
// The payload is read from stdin when no file is given.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/prognoshealth/proxypost/config"
	"github.com/prognoshealth/proxypost/proxy"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.ValidateTarget(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}

	payload, err := readPayload(args, stdin)
	if err != nil {
		return err
	}

	// the response is printed as received, numbers included
	var out json.RawMessage

	if cfg.FunctionName != "" {
		invoker := proxy.NewInvoker(cfg.Region)
		invoker.Logger = logger

		err = invoker.InvokeInto(ctx, cfg.FunctionName, payload, &out)
	} else {
		client := proxy.NewClient()
		client.Logger = logger

		err = client.Post(ctx, cfg.APIURL, payload, &out)
	}

	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

// readPayload decodes the json payload from the file named in args, or stdin.
// Numbers are kept as json.Number so large ids pass through unchanged, and
// anything after the first json value is rejected.
func readPayload(args []string, stdin io.Reader) (interface{}, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most 1 payload file, received: %v", len(args))
	}

	r := stdin
	name := "stdin"

	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "failed opening payload")
		}
		defer f.Close()

		r = f
		name = args[0]
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal payload from %s", name)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after payload")
		}
		return nil, errors.Wrapf(err, "failed to unmarshal payload from %s", name)
	}

	return payload, nil
}
