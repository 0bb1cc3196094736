package types

import "reflect"

// Of returns the reflect.Type of T. Pass it to Register to register T without a sample value.
func Of[T any]() reflect.Type { return reflect.TypeFor[T]() }
