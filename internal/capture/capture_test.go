package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
)

func TestParseKind(t *testing.T) {
	for _, s := range []string{"portrait", "license", "insurance-front", "insurance-back"} {
		if _, err := ParseKind(s); err != nil {
			t.Fatalf("ParseKind(%q): %v", s, err)
		}
	}
	if _, err := ParseKind("passport"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

func TestValidate(t *testing.T) {
	ok := Upload{Filename: "card.jpg", ContentType: "image/jpeg", Data: []byte("xx")}
	if err := Validate(ok, 1024); err != nil {
		t.Fatalf("valid upload rejected: %v", err)
	}

	// Charset parameters on the content type are tolerated.
	withParam := Upload{ContentType: "image/png; charset=binary", Data: []byte("xx")}
	if err := Validate(withParam, 1024); err != nil {
		t.Fatalf("parameterized type rejected: %v", err)
	}

	pdf := Upload{Filename: "card.pdf", ContentType: "application/pdf", Data: []byte("xx")}
	if err := Validate(pdf, 1024); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}

	big := Upload{ContentType: "image/webp", Data: make([]byte, 2048)}
	if err := Validate(big, 1024); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}

	empty := Upload{ContentType: "image/jpeg"}
	if err := Validate(empty, 1024); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType for empty file", err)
	}
}

func TestAssignRoutesByKind(t *testing.T) {
	form := formstate.NewStore()

	if err := Assign(form, KindPortrait, false, "url-portrait"); err != nil {
		t.Fatalf("portrait: %v", err)
	}
	if err := Assign(form, KindLicense, false, "url-license"); err != nil {
		t.Fatalf("license: %v", err)
	}
	rec, _ := form.Read(formstate.SectionDemographics)
	demo := rec.(formstate.Demographics)
	if demo.PatientsPicture != "url-portrait" || demo.DriversLicense != "url-license" {
		t.Fatalf("demographics routing: %+v", demo)
	}

	if err := Assign(form, KindInsuranceFront, false, "url-front"); err != nil {
		t.Fatalf("front: %v", err)
	}
	if err := Assign(form, KindInsuranceBack, true, "url-back"); err != nil {
		t.Fatalf("back: %v", err)
	}
	rec, _ = form.Read(formstate.SectionPrimaryInsurance)
	if rec.(formstate.Insurance).InsuranceCardFront != "url-front" {
		t.Fatalf("primary routing: %+v", rec)
	}
	rec, _ = form.Read(formstate.SectionSecondaryIns)
	if rec.(formstate.Insurance).InsuranceCardBack != "url-back" {
		t.Fatalf("secondary routing: %+v", rec)
	}
}

func TestAssignPreservesSiblingFields(t *testing.T) {
	form := formstate.NewStore()
	seed := formstate.Insurance{InsuranceName: "Acme Health", MemberID: "M-1"}
	if err := form.UpdateSection(formstate.SectionPrimaryInsurance, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := Assign(form, KindInsuranceFront, false, "url-front"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	rec, _ := form.Read(formstate.SectionPrimaryInsurance)
	ins := rec.(formstate.Insurance)
	if ins.InsuranceName != "Acme Health" || ins.MemberID != "M-1" {
		t.Fatalf("assign dropped sibling fields: %+v", ins)
	}
	if ins.InsuranceCardFront != "url-front" {
		t.Fatalf("assign missing: %+v", ins)
	}
}

type fakeS3 struct {
	lastInput *s3.PutObjectInput
	err       error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3AdapterUpload(t *testing.T) {
	fake := &fakeS3{}
	adapter := NewS3Adapter(fake, "kiosk-docs", "https://docs.example.com", nil)
	adapter.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }

	val, err := adapter.Upload(context.Background(), Upload{ContentType: "image/png", Data: []byte("png-bytes")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(string(val), "https://docs.example.com/documents/2025/06/15/") {
		t.Fatalf("url = %q", val)
	}
	if !strings.HasSuffix(string(val), ".png") {
		t.Fatalf("url = %q, want .png suffix", val)
	}
	if fake.lastInput == nil || *fake.lastInput.Bucket != "kiosk-docs" {
		t.Fatalf("put input = %+v", fake.lastInput)
	}
	if *fake.lastInput.ContentType != "image/png" {
		t.Fatalf("content type = %q", *fake.lastInput.ContentType)
	}
}

func TestS3AdapterUploadFailure(t *testing.T) {
	fake := &fakeS3{err: errors.New("denied")}
	adapter := NewS3Adapter(fake, "kiosk-docs", "", nil)

	if _, err := adapter.Upload(context.Background(), Upload{ContentType: "image/jpeg", Data: []byte("x")}); err == nil {
		t.Fatal("expected error from put failure")
	}
}

func TestDataURLAdapterRoundTrip(t *testing.T) {
	adapter := NewDataURLAdapter()
	val, err := adapter.Upload(context.Background(), Upload{ContentType: "image/jpeg", Data: []byte("jpeg-bytes")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(string(val), "data:image/jpeg;base64,") {
		t.Fatalf("value = %q", val)
	}

	up, err := ParseDataURL(string(val))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if up.ContentType != "image/jpeg" || string(up.Data) != "jpeg-bytes" {
		t.Fatalf("round trip = %+v", up)
	}
}

func TestParseDataURLRejectsGarbage(t *testing.T) {
	for _, s := range []string{
		"https://example.com/x.png",
		"data:image/png",
		"data:image/png;base64,not-!-base64",
		"data:image/png;hex,ff",
	} {
		if _, err := ParseDataURL(s); err == nil {
			t.Fatalf("ParseDataURL(%q) accepted garbage", s)
		}
	}
}
