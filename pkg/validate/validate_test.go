package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnosapp/turnos/pkg/validate"
)

type contact struct {
	Name  string `json:"nombre"  validate:"required"`
	Email string `json:"email"   validate:"required,email"`
	Phone string `json:"celular" validate:"required,min=6"`
}

type orderInput struct {
	Kind    string   `json:"tipo"     validate:"required"`
	Contact *contact `json:"usuario"  validate:"required"`
	Amount  float64  `json:"monto"    validate:"required,gt=0"`
	Note    string   `json:"nota"     validate:"nullable,max=5"`
}

func validInput() orderInput {
	return orderInput{
		Kind:    "domicilio",
		Contact: &contact{Name: "Ana", Email: "ana@example.com", Phone: "3001234567"},
		Amount:  1500,
	}
}

func TestValidInputPasses(t *testing.T) {
	in := validInput()
	assert.False(t, validate.Required(&in).Any())
	assert.False(t, validate.Struct(&in).Any())
}

func TestRequiredReportsInDeclarationOrder(t *testing.T) {
	in := orderInput{}
	errs := validate.Required(&in)

	require.Len(t, errs, 3)
	assert.Equal(t, "tipo", errs.First().Field)
	assert.Equal(t, "usuario", errs[1].Field)
	assert.Equal(t, "monto", errs[2].Field)
	assert.Equal(t, "The tipo field is required.", errs.First().Message)
}

func TestRequiredWalksNestedStruct(t *testing.T) {
	in := validInput()
	in.Contact.Email = "  "

	errs := validate.Required(&in)
	require.Len(t, errs, 1)
	assert.Equal(t, "usuario.email", errs.First().Field)
}

func TestRequiredIgnoresFormatRules(t *testing.T) {
	in := validInput()
	in.Contact.Email = "not-an-email"
	in.Amount = -3

	assert.False(t, validate.Required(&in).Any())

	errs := validate.Struct(&in)
	require.Len(t, errs, 2)
	assert.Equal(t, "The usuario.email must be a valid email address.", errs[0].Message)
	assert.Equal(t, "The monto must be greater than 0.", errs[1].Message)
}

func TestNullableSkipsEmptyValues(t *testing.T) {
	in := validInput()
	assert.False(t, validate.Struct(&in).Any())

	in.Note = "too long"
	errs := validate.Struct(&in)
	require.Len(t, errs, 1)
	assert.Equal(t, "The nota must not exceed 5 characters.", errs.First().Message)
}

func TestMinOnStringLength(t *testing.T) {
	in := validInput()
	in.Contact.Phone = "123"
	errs := validate.Struct(&in)
	require.True(t, errs.Any())
	assert.Equal(t, "The usuario.celular must be at least 6 characters.", errs.First().Message)
}

func TestNonStructInputIsIgnored(t *testing.T) {
	assert.Nil(t, validate.Struct("x"))
	var nilPtr *orderInput
	assert.Nil(t, validate.Required(nilPtr))
}
