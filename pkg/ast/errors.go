package ast

import "fmt"

// ErrorKind names a rule violation. The names are stable; the rendered
// message is derived from the kind and the captured names.
type ErrorKind string

const (
	InterfaceOnlyPublicMethods    ErrorKind = "InterfaceOnlyPublicMethods"
	InterfaceShouldNotDefineAttrs ErrorKind = "InterfaceShouldNotDefineAttrs"
	DerivedClassesAllAttrsPrivate ErrorKind = "DerivedClassesAllAttrsPrivate"
	GlobalVariablesUsage          ErrorKind = "GlobalVariablesUsage"
	GlobalVariablesDeclaration    ErrorKind = "GlobalVariablesDeclaration"
	DeriveFromAbstractInterface   ErrorKind = "DeriveFromAbstractInterface"
	AvoidInitMethods              ErrorKind = "AvoidInitMethods"
	ParserUnhandled               ErrorKind = "ParserUnhandled"
	LintInstructionNotParseble    ErrorKind = "LintInstructionNotParseble"

	// C++ specific errors without broader meaning for other languages.
	AbstractClassMissingDefaultDestructor   ErrorKind = "AbstractClassMissingDefaultDestructor"
	AbstractClassMethodNotVirtual           ErrorKind = "AbstractClassMethodNotVirtual"
	AbstractClassMethodMissingVirtualEnding ErrorKind = "AbstractClassMethodMissingVirtualEnding"
	DerivedClassMethodIsVirtual             ErrorKind = "DerivedClassMethodIsVirtual"
	DerivedClassMethodHasVirtualEnding      ErrorKind = "DerivedClassMethodHasVirtualEnding"
	DerivesAlwaysPublic                     ErrorKind = "DerivesAlwaysPublic"
	DerivesAlwaysFromAbstractInterfaces     ErrorKind = "DerivesAlwaysFromAbstractInterfaces"
)

// Diagnostic is a source-located rule violation. Class carries the
// enclosing class name where the message needs one; Detail carries the
// second payload (attribute name, method source, comment text, ...).
type Diagnostic struct {
	Kind   ErrorKind `json:"kind"`
	Class  string    `json:"class,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Range  Range     `json:"range"`
	Path   string    `json:"file_path"`
}

// Message renders the human readable diagnostic text. The mapping is
// one-to-one and total over ErrorKind.
func (d *Diagnostic) Message() string {
	switch d.Kind {
	case InterfaceOnlyPublicMethods:
		return fmt.Sprintf("Abstract class `%s` should ONLY define 'public' methods (not allowed %s)", d.Class, d.Detail)
	case InterfaceShouldNotDefineAttrs:
		return fmt.Sprintf("Abstract class `%s` must not have attributes ('%s')", d.Class, d.Detail)
	case DerivedClassesAllAttrsPrivate:
		return fmt.Sprintf("Derived class '%s' must not have non private attributes ('%s')", d.Class, d.Detail)
	case GlobalVariablesDeclaration:
		return fmt.Sprintf("It's not allowed to create global variables ('%s'). Global variables create invisible coupling.", d.Detail)
	case GlobalVariablesUsage:
		return fmt.Sprintf("It's not allowed to use global variables ('%s'). Global variables create invisible coupling.", d.Detail)
	case DeriveFromAbstractInterface:
		return fmt.Sprintf("Class '%s' should be derived from abstract interface", d.Class)
	case AvoidInitMethods:
		return fmt.Sprintf("Class '%s' should not provide an init function. Initialisation should be done in constructor.", d.Class)
	case AbstractClassMissingDefaultDestructor:
		return fmt.Sprintf("Abstract class '%s' should provide a default destructor.", d.Class)
	case AbstractClassMethodNotVirtual:
		return fmt.Sprintf("method '%s' in abstract class '%s' must be virtual", d.Detail, d.Class)
	case AbstractClassMethodMissingVirtualEnding:
		return fmt.Sprintf("Abstract class '%s': missing `= 0;` for method '%s'", d.Class, d.Detail)
	case DerivedClassMethodIsVirtual:
		return fmt.Sprintf("Derived class `%s` must not define virtual functions ('%s')", d.Class, d.Detail)
	case DerivedClassMethodHasVirtualEnding:
		return fmt.Sprintf("Derived class '%s' method '%s' should not be pure virtual", d.Class, d.Detail)
	case DerivesAlwaysPublic:
		return fmt.Sprintf("Class '%s': Derives must always be public", d.Class)
	case DerivesAlwaysFromAbstractInterfaces:
		return fmt.Sprintf("Class '%s': Derives must always be from abstract interfaces", d.Class)
	case LintInstructionNotParseble:
		return fmt.Sprintf("could not parse lint instruction in comment: %s", d.Detail)
	case ParserUnhandled:
		return d.Detail
	}
	return string(d.Kind)
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Message()
}
