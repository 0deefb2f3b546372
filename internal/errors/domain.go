package errors

import "fmt"

// AnnotationError reports a malformed or misplaced //dispatch:: annotation.
type AnnotationError struct {
	*BaseError
	Kind string // annotation kind, empty when the kind itself is unknown
	Raw  string // original comment text
}

// NewAnnotationSyntaxError creates an error for text that does not follow the annotation grammar
func NewAnnotationSyntaxError(raw string, loc SourceLocation, cause error) *AnnotationError {
	err := &AnnotationError{
		BaseError: Wrap(SyntaxErrorCode, "invalid annotation syntax", cause),
		Raw:       raw,
	}
	err.WithLocation(loc)
	err.WithSuggestion("annotations look like: //dispatch::route /hello or //dispatch::service -Name=greeter")
	return err
}

// NewAnnotationValidationError creates an error for a well-formed annotation that breaks its schema
func NewAnnotationValidationError(kind, message, raw string, loc SourceLocation) *AnnotationError {
	err := &AnnotationError{
		BaseError: New(ValidationErrorCode, fmt.Sprintf("%s annotation: %s", kind, message)),
		Kind:      kind,
		Raw:       raw,
	}
	err.WithLocation(loc)
	err.WithContext("annotation_kind", kind)
	return err
}

// ScanError reports that a namespace could not be resolved or walked.
type ScanError struct {
	*BaseError
	Namespace string
	Path      string
}

// NewScanError creates a fatal scan error for the given namespace
func NewScanError(namespace, path string, cause error) *ScanError {
	msg := fmt.Sprintf("scan root %q does not resolve to a directory", namespace)
	if namespace == "" {
		msg = "scan package is not configured"
	}
	err := &ScanError{
		BaseError: Wrap(ScanErrorCode, msg, cause),
		Namespace: namespace,
		Path:      path,
	}
	err.WithContext("path", path)
	err.WithSuggestion("set scanPackage to a namespace whose directory exists under the source root")
	return err
}

// InstantiationError reports that a scanned type could not be turned into a bean.
type InstantiationError struct {
	*BaseError
	TypeName string
}

// NewInstantiationError creates an error for a type that could not be instantiated
func NewInstantiationError(typeName, reason string, cause error) *InstantiationError {
	return &InstantiationError{
		BaseError: Wrap(InstantiationErrorCode, fmt.Sprintf("cannot instantiate %s: %s", typeName, reason), cause),
		TypeName:  typeName,
	}
}

// ConfigurationError reports a missing or invalid configuration value.
type ConfigurationError struct {
	*BaseError
	Key string
}

// NewConfigurationError creates a configuration error for key
func NewConfigurationError(key, message string, cause error) *ConfigurationError {
	err := &ConfigurationError{
		BaseError: Wrap(ConfigurationErrorCode, message, cause),
		Key:       key,
	}
	if key != "" {
		err.WithContext("key", key)
	}
	return err
}

// GenerationError reports a failure while rendering or writing generated code.
type GenerationError struct {
	*BaseError
	TargetFile string
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(targetFile string, cause error) *GenerationError {
	return &GenerationError{
		BaseError:  Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", targetFile), cause),
		TargetFile: targetFile,
	}
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s %s", operation, item)
	return Wrap(UnknownErrorCode, message, cause)
}
