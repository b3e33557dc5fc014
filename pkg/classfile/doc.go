// Package classfile extracts the external type references of compiled JVM
// classes.
//
// # Overview
//
// A compiled unit is decoded structurally: header, constant pool, fields,
// methods and attributes. No bytecode instructions are interpreted; code-level
// references are recovered from the constant pool entries that instructions
// point at.
//
// [Scan] turns one unit into an ordered stream of [Ref] events, each tagged
// with the [Kind] of site it was found at:
//
//   - the declared superclass (never java/lang/Object) and interfaces
//   - object types in field and method descriptors, array element types included
//   - checked exceptions declared on methods
//   - annotation types, class literals and enum constant types inside
//     annotations on the class, fields, methods and method parameters,
//     through nested annotations and array values
//   - class types inside generic signatures
//   - dynamic call sites: bootstrap owner and descriptor, Class, MethodType
//     and MethodHandle bootstrap arguments
//   - Class, member-reference and MethodType constants used by method bodies
//
// [Extract] folds the stream into a [TypeSet] of internal
// (slash-delimited) names, without the unit's own name.
//
// # Errors
//
// Malformed input returns a [*DecodeError] that matches [ErrMalformed]
// with errors.Is. Errors never escape one unit: callers aggregating many units
// skip the offending one.
//
// # Nesting
//
// Annotation element values and generic signatures can nest arbitrarily deep.
// Both are walked with explicit stacks, so hostile input cannot exhaust the
// goroutine stack.
package classfile
