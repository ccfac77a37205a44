package validation

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/dealership/internal/server/models"
)

// Form field names shared by handlers and templates.
const (
	FieldAccountID      = "account_id"
	FieldFirstName      = "account_firstname"
	FieldLastName       = "account_lastname"
	FieldEmail          = "account_email"
	FieldPassword       = "account_password"
	FieldClassification = "classification_name"
	FieldClassID        = "classification_id"
	FieldInvID          = "inv_id"
	FieldMake           = "inv_make"
	FieldModel          = "inv_model"
	FieldYear           = "inv_year"
	FieldDescription    = "inv_description"
	FieldImage          = "inv_image"
	FieldThumbnail      = "inv_thumbnail"
	FieldPrice          = "inv_price"
	FieldMiles          = "inv_miles"
	FieldColor          = "inv_color"
)

// Messages shown next to invalid fields.
const (
	MsgFirstName       = "Please provide a first name."
	MsgLastName        = "Please provide a last name."
	MsgEmail           = "A valid email is required."
	MsgLoginEmail      = "Please provide a valid email address."
	MsgEmailExists     = "Email exists. Please log in or use a different email."
	MsgEmailTaken      = "Email exists. Please use a different email."
	MsgPasswordMissing = "Password is required."
	MsgPasswordWeak    = "Password does not meet requirements."
	MsgAccountID       = "Missing account id."
	MsgClassification  = "Classification name cannot contain spaces or special characters."
	MsgClassExists     = "That classification already exists."
)

const (
	minPasswordLength = 12
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

// StrongPassword requires at least 12 characters with a lower-case letter,
// an upper-case letter, a digit and a symbol, and at most 72 bytes.
func StrongPassword(pw string) bool {
	if utf8.RuneCountInString(pw) < minPasswordLength || len(pw) > maxPasswordBytes {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || r == ' ':
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Normalize trims names and normalizes the email. The password is left as
// typed.
func (r *Registration) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = NormalizeEmail(r.Email)
}

func (r *Registration) Validate() Errors {
	e := Errors{}
	checkNames(e, r.FirstName, r.LastName)
	if !validEmail(r.Email) {
		e.Add(FieldEmail, MsgEmail)
	}
	if !StrongPassword(r.Password) {
		e.Add(FieldPassword, MsgPasswordWeak)
	}
	return e
}

type Login struct {
	Email    string
	Password string
}

func (l *Login) Normalize() {
	l.Email = NormalizeEmail(l.Email)
}

func (l *Login) Validate() Errors {
	e := Errors{}
	if !validEmail(l.Email) {
		e.Add(FieldEmail, MsgLoginEmail)
	}
	if strings.TrimSpace(l.Password) == "" {
		e.Add(FieldPassword, MsgPasswordMissing)
	}
	return e
}

type Profile struct {
	AccountID int64
	FirstName string
	LastName  string
	Email     string
}

func (p *Profile) Normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = NormalizeEmail(p.Email)
}

func (p *Profile) Validate() Errors {
	e := Errors{}
	if p.AccountID <= 0 {
		e.Add(FieldAccountID, MsgAccountID)
	}
	checkNames(e, p.FirstName, p.LastName)
	if !validEmail(p.Email) {
		e.Add(FieldEmail, MsgEmail)
	}
	return e
}

type PasswordChange struct {
	AccountID int64
	Password  string
}

func (p *PasswordChange) Validate() Errors {
	e := Errors{}
	if p.AccountID <= 0 {
		e.Add(FieldAccountID, MsgAccountID)
	}
	if !StrongPassword(p.Password) {
		e.Add(FieldPassword, MsgPasswordWeak)
	}
	return e
}

var classificationName = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ClassificationName trims name and checks it is a single alphanumeric word.
func ClassificationName(name string) (string, Errors) {
	name = strings.TrimSpace(name)
	e := Errors{}
	if !classificationName.MatchString(name) {
		e.Add(FieldClassification, MsgClassification)
	}
	return name, e
}

// VehicleForm is the raw inventory form; numeric fields arrive as text.
type VehicleForm struct {
	ID               string
	ClassificationID string
	Make             string
	Model            string
	Year             string
	Description      string
	Image            string
	Thumbnail        string
	Price            string
	Miles            string
	Color            string
}

// Parse validates the form and converts it. requireID is set for updates.
func (f *VehicleForm) Parse(requireID bool) (*models.Vehicle, Errors) {
	e := Errors{}
	v := &models.Vehicle{
		Make:        strings.TrimSpace(f.Make),
		Model:       strings.TrimSpace(f.Model),
		Description: strings.TrimSpace(f.Description),
		Image:       strings.TrimSpace(f.Image),
		Thumbnail:   strings.TrimSpace(f.Thumbnail),
		Color:       strings.TrimSpace(f.Color),
	}

	if requireID {
		id, err := strconv.ParseInt(strings.TrimSpace(f.ID), 10, 64)
		if err != nil || id <= 0 {
			e.Add(FieldInvID, "Missing inventory id.")
		}
		v.ID = id
	}

	classID, err := strconv.ParseInt(strings.TrimSpace(f.ClassificationID), 10, 64)
	if err != nil || classID <= 0 {
		e.Add(FieldClassID, "Please choose a classification.")
	}
	v.ClassificationID = classID

	required := []struct{ field, value, msg string }{
		{FieldMake, v.Make, "Make is required."},
		{FieldModel, v.Model, "Model is required."},
		{FieldDescription, v.Description, "Description is required."},
		{FieldImage, v.Image, "Image path is required."},
		{FieldThumbnail, v.Thumbnail, "Thumbnail path is required."},
		{FieldColor, v.Color, "Color is required."},
	}
	for _, r := range required {
		if r.value == "" {
			e.Add(r.field, r.msg)
		}
	}

	year, err := strconv.Atoi(strings.TrimSpace(f.Year))
	if err != nil || year < 1900 || year > 2099 {
		e.Add(FieldYear, "Year must be a valid number.")
	}
	v.Year = year

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil || price < 0 {
		e.Add(FieldPrice, "Price must be a positive number.")
	}
	v.Price = int64(price)

	miles, err := strconv.ParseInt(strings.TrimSpace(f.Miles), 10, 64)
	if err != nil || miles < 0 {
		e.Add(FieldMiles, "Miles must be 0 or greater.")
	}
	v.Miles = miles

	return v, e
}

// FormFromVehicle fills a form for editing.
func FormFromVehicle(v *models.Vehicle) VehicleForm {
	return VehicleForm{
		ID:               strconv.FormatInt(v.ID, 10),
		ClassificationID: strconv.FormatInt(v.ClassificationID, 10),
		Make:             v.Make,
		Model:            v.Model,
		Year:             strconv.Itoa(v.Year),
		Description:      v.Description,
		Image:            v.Image,
		Thumbnail:        v.Thumbnail,
		Price:            strconv.FormatInt(v.Price, 10),
		Miles:            strconv.FormatInt(v.Miles, 10),
		Color:            v.Color,
	}
}

func checkNames(e Errors, first, last string) {
	if first == "" {
		e.Add(FieldFirstName, MsgFirstName)
	}
	if last == "" {
		e.Add(FieldLastName, MsgLastName)
	}
}
