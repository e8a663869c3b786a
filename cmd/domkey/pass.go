package main

import (
	"context"

	"domkey/internal/session"
	"domkey/internal/source"
)

// runPass loads path and indexes it in a new session.
func runPass(ctx context.Context, rt *runtime, path string) (*session.Session, *session.Summary, error) {
	opts := source.Options{
		IDAttribute: rt.cfg.Source.IDAttribute,
		SkipText:    rt.cfg.Source.SkipText,
		MaxDepth:    rt.cfg.Source.MaxDepth,
	}
	in, err := source.Load(ctx, path, opts)
	if err != nil {
		return nil, nil, err
	}
	rt.logger.Debug("Source loaded", "path", path, "format", string(in.Format))

	s := session.New(session.Options{Mode: rt.mode, Logger: rt.logger})
	var sum *session.Summary
	if in.Tree != nil {
		sum, err = s.Begin(ctx, in.Tree)
	} else {
		sum, err = s.Replay(ctx, in.Trace)
	}
	if err != nil {
		return nil, nil, err
	}
	return s, sum, nil
}
