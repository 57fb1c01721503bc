package treewire

import "errors"

// Sentinel errors for transformer operations.
var (
	// ErrRegistration reports an invalid component at registration time:
	// empty tag name, empty version, or a nil component value.
	ErrRegistration = errors.New("treewire: invalid component registration")

	// ErrMalformedComponentData reports a record shaped like a component
	// descriptor but missing required fields. This is a data-integrity
	// failure and is returned in both strict and legacy modes.
	ErrMalformedComponentData = errors.New("treewire: malformed component data")

	// ErrUnregisteredComponent reports an element whose type does not
	// resolve against the registry during serialization. Strict mode only.
	ErrUnregisteredComponent = errors.New("treewire: unregistered component")

	// ErrUnknownComponent reports a serialized record whose tagName does
	// not resolve against the registry. Strict mode only.
	ErrUnknownComponent = errors.New("treewire: unknown component tag")

	// ErrMaxDepthExceeded reports a tree nested beyond the transformer's
	// configured depth bound.
	ErrMaxDepthExceeded = errors.New("treewire: maximum tree depth exceeded")

	// ErrPatternHandler reports a markup pattern handler that failed or
	// panicked. It never propagates out of TransformHTML: the failing
	// element degrades to an opaque leaf and the error is logged.
	ErrPatternHandler = errors.New("treewire: pattern handler failed")
)

// IsRegistrationError checks if err came from component registration.
func IsRegistrationError(err error) bool {
	return errors.Is(err, ErrRegistration)
}

// IsMalformedData checks if err reports a malformed component descriptor.
func IsMalformedData(err error) bool {
	return errors.Is(err, ErrMalformedComponentData)
}

// IsUnknownComponent checks if err reports an unresolvable component, in
// either direction of the round trip.
func IsUnknownComponent(err error) bool {
	return errors.Is(err, ErrUnknownComponent) || errors.Is(err, ErrUnregisteredComponent)
}
