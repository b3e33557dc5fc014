// Package usage decides which dependency archives a project references.
//
// [BuildIndex] walks a compiled output directory and unions the references of
// every class file into [UsedTypes]. A [Classifier] then checks each archive:
//
//	idx, err := usage.BuildIndex(ctx, "target/classes", usage.IndexOptions{})
//	c := usage.NewClassifier(idx.Types, logger)
//	v := c.Classify(jarPath)
//	if !v.Used {
//	    // no type in the jar is referenced
//	}
//
// Classification fails open: a missing file, a foreign extension, an
// allow-listed compile-only library or an unreadable archive is reported as
// used, with the [Reason] recorded on the [Verdict].
package usage
