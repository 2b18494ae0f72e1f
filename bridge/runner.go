package bridge

import (
	"context"

	"github.com/jessevdk/go-flags"
)

// Run parses args, starts the bridge and serves MCP until the transport
// shuts down. A missing room identity surfaces here as a parse error and a
// non-zero exit in main.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	service, err := New(ctx, options)
	if err != nil {
		return err
	}
	if options.HTTPAddr != "" {
		endpoint, err := service.HTTP(ctx, options.HTTPAddr)
		if err != nil {
			return err
		}
		return endpoint.ListenAndServe()
	}
	srv, err := service.Stdio(ctx)
	if err != nil {
		return err
	}
	return srv.ListenAndServe()
}
