// Package capture turns patient document images into values the form can
// hold. The adapter is an external collaborator boundary: anything that can
// take image bytes and hand back an opaque string satisfies it.
package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
)

// Kind names the document being captured and implies the form field that
// receives it.
type Kind string

const (
	KindPortrait       Kind = "portrait"
	KindLicense        Kind = "license"
	KindInsuranceFront Kind = "insurance-front"
	KindInsuranceBack  Kind = "insurance-back"
)

// ParseKind resolves a request's kind value.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPortrait, KindLicense, KindInsuranceFront, KindInsuranceBack:
		return Kind(s), nil
	}
	return "", fmt.Errorf("capture: %w: %q", ErrUnknownKind, s)
}

// ImageValue is an opaque image reference, either a data URL or a remote
// URL. The form stores it as-is.
type ImageValue string

// Upload is one image ready for the adapter: raw bytes plus what the client
// claimed about them.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Adapter produces an ImageValue from an upload. Implementations decide
// where the bytes live; callers validate before invoking.
type Adapter interface {
	Upload(ctx context.Context, up Upload) (ImageValue, error)
}

// LiveCapturer is an optional adapter capability for deployments with a
// server-attached camera. facingHint is "user" or "environment".
type LiveCapturer interface {
	Capture(ctx context.Context, kind Kind, facingHint string) (ImageValue, error)
}

// allowedTypes is the fixed image allow-list. Anything else is rejected
// before the adapter sees it.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Validate checks an upload against the allow-list and size ceiling. This
// runs before any adapter call so a bad file never costs a network trip.
func Validate(up Upload, maxBytes int64) error {
	mime := strings.ToLower(strings.TrimSpace(up.ContentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if _, ok := allowedTypes[mime]; !ok {
		return fmt.Errorf("capture: %w: %q", ErrUnsupportedType, up.ContentType)
	}
	if maxBytes > 0 && int64(len(up.Data)) > maxBytes {
		return fmt.Errorf("capture: %w: %d bytes over %d limit", ErrTooLarge, len(up.Data), maxBytes)
	}
	if len(up.Data) == 0 {
		return fmt.Errorf("capture: %w: empty file", ErrUnsupportedType)
	}
	return nil
}

// extFor maps a validated content type to an object key extension.
func extFor(contentType string) string {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if ext, ok := allowedTypes[mime]; ok {
		return ext
	}
	return ".bin"
}

// Assign writes a produced image into the section and field implied by kind.
// Insurance card kinds land in the secondary section when secondary is set,
// matching the session's insurance toggle. The write goes through the form
// store's wholesale section replace, so the record is read, amended, and
// written back in full.
func Assign(form *formstate.Store, kind Kind, secondary bool, value ImageValue) error {
	switch kind {
	case KindPortrait, KindLicense:
		rec, err := form.Read(formstate.SectionDemographics)
		if err != nil {
			return err
		}
		demo := rec.(formstate.Demographics)
		if kind == KindPortrait {
			demo.PatientsPicture = string(value)
		} else {
			demo.DriversLicense = string(value)
		}
		return form.UpdateSection(formstate.SectionDemographics, demo)

	case KindInsuranceFront, KindInsuranceBack:
		section := formstate.SectionPrimaryInsurance
		if secondary {
			section = formstate.SectionSecondaryIns
		}
		rec, err := form.Read(section)
		if err != nil {
			return err
		}
		ins := rec.(formstate.Insurance)
		if kind == KindInsuranceFront {
			ins.InsuranceCardFront = string(value)
		} else {
			ins.InsuranceCardBack = string(value)
		}
		return form.UpdateSection(section, ins)
	}
	return fmt.Errorf("capture: %w: %q", ErrUnknownKind, kind)
}
