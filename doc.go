// Package runcell provides a persistent-interpreter code execution engine
// for editors.  It sends blocks of source code to a long-lived Python
// subprocess holding a shared namespace, tracks execution state visually
// through pluggable presentation surfaces and reports results and errors
// back to the host.
//
// End-users typically interact with the engine via the high-level Service
// façade exposed by the root package:
//
//	srv, _ := runcell.New(runcell.WithInterpreter("python3"))
//	rt := srv.Runtime()
//	doc := model.NewDocument("main.py", source)
//	outcome, _ := rt.Run(ctx, doc, model.NewCursor(0, 0))
//	_ = srv.Shutdown()
//
// For more details see the README and individual sub-packages.
package runcell
