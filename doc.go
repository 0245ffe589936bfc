// Package anydir presents a directory embedded into the binary at build time
// and a directory read from the host filesystem at run time through one set
// of handles.
//
// A [CtDir] wraps a tree captured with //go:embed (usually through code
// written by cmd/embeddir), a [RtDir] wraps a filesystem path. Both enumerate
// their immediate regular files as [AnyFileEntry] values, and both are
// carried by [AnyDir], so callers pick the source once at construction time:
//
//	web := anydir.MustNew(anydir.KindCt, "web")   // registered by generated code
//	overlay := anydir.Rt("./web")                  // read from disk on every call
//	for _, e := range anydir.NewOverlay(overlay, web).FileEntries() {
//		fmt.Println(e.Path())
//	}
//
// Listing a runtime directory never fails: an unreadable or missing directory
// yields no entries and a warning on the logger set with [SetLogger].
package anydir
