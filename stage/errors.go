package stage

import (
	"encoding/json"
	"io/fs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for package stage.
var (
	ErrNotDirectory       = errors.New("stage root exists and is not a directory")
	ErrIncompatibleLayout = errors.New("stage layout version is not supported")
	ErrWildcardName       = errors.New("cannot write a record with a wildcard name")
	ErrOutsideRoot        = errors.New("path escapes the stage root")
	ErrNotImplemented     = errors.New("operation not implemented by driver")
	ErrUnsupportedContent = errors.New("content type not supported by driver")
	ErrNotObject          = errors.New("metadata file does not hold an object")
)

// Error kinds stored under KeyError in failure records.
const (
	KindNotExist           = "NotExist"
	KindExist              = "Exist"
	KindPermission         = "Permission"
	KindNotImplemented     = "NotImplemented"
	KindOutsideRoot        = "OutsideRoot"
	KindWildcardName       = "WildcardName"
	KindUnsupportedContent = "UnsupportedContent"
	KindDecode             = "Decode"
	KindIO                 = "IO"
)

// ErrorKind names the class of err as it is reported in a failure record.
func ErrorKind(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		yamlErr   *yaml.TypeError
	)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotExist
	case errors.Is(err, fs.ErrExist):
		return KindExist
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, ErrNotImplemented):
		return KindNotImplemented
	case errors.Is(err, ErrOutsideRoot):
		return KindOutsideRoot
	case errors.Is(err, ErrWildcardName):
		return KindWildcardName
	case errors.Is(err, ErrUnsupportedContent):
		return KindUnsupportedContent
	case errors.Is(err, ErrNotObject),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.As(err, &yamlErr):
		return KindDecode
	}
	return KindIO
}
