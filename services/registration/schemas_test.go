package registration

import (
	"testing"

	"darisni/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaForRoleBranching(t *testing.T) {
	for step := 1; step <= 3; step++ {
		student, ok := SchemaFor(step, models.RoleStudent)
		require.True(t, ok)
		teacher, ok := SchemaFor(step, models.RoleTeacher)
		require.True(t, ok)
		assert.Equal(t, student.Name, teacher.Name, "steps 1-3 are shared between roles")
	}

	student4, ok := SchemaFor(4, models.RoleStudent)
	require.True(t, ok)
	assert.Equal(t, "education", student4.Name)
	assert.Equal(t, []string{"studentCard"}, student4.RequiredFiles)

	teacher4, ok := SchemaFor(4, models.RoleTeacher)
	require.True(t, ok)
	assert.Equal(t, "qualifications", teacher4.Name)
	assert.Equal(t, []string{"qualification"}, teacher4.RequiredFiles)

	student5, ok := SchemaFor(5, models.RoleStudent)
	require.True(t, ok)
	assert.Equal(t, "consent", student5.Name)

	teacher5, ok := SchemaFor(5, models.RoleTeacher)
	require.True(t, ok)
	assert.Equal(t, "background", teacher5.Name)

	teacher6, ok := SchemaFor(6, models.RoleTeacher)
	require.True(t, ok)
	assert.Equal(t, "consent", teacher6.Name)
}

func TestSchemaForOutOfRange(t *testing.T) {
	_, ok := SchemaFor(0, models.RoleStudent)
	assert.False(t, ok)
	_, ok = SchemaFor(6, models.RoleStudent)
	assert.False(t, ok, "students have five steps")
	_, ok = SchemaFor(7, models.RoleTeacher)
	assert.False(t, ok)
	_, ok = SchemaFor(1, models.Role("admin"))
	assert.False(t, ok)
}

func TestValidateCredentials(t *testing.T) {
	schema, ok := SchemaFor(1, models.RoleStudent)
	require.True(t, ok)

	valid := map[string]any{
		"email":           "amine@example.dz",
		"password":        "s3cret-pass",
		"confirmPassword": "s3cret-pass",
		"phone":           "+213551234567",
	}
	result := schema.Validate(valid, nil)
	assert.True(t, result.Valid)
	assert.Empty(t, result.FieldErrors)

	t.Run("short password", func(t *testing.T) {
		data := map[string]any{
			"email":           "amine@example.dz",
			"password":        "abc",
			"confirmPassword": "abc",
			"phone":           "0551234567",
		}
		result := schema.Validate(data, nil)
		assert.False(t, result.Valid)
		assert.Contains(t, result.FieldErrors, "password")
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		data := map[string]any{
			"email":           "amine@example.dz",
			"password":        "s3cret-pass",
			"confirmPassword": "different-pass",
			"phone":           "0551234567",
		}
		result := schema.Validate(data, nil)
		assert.False(t, result.Valid)
		assert.Contains(t, result.FieldErrors, "confirmPassword")
	})

	t.Run("bad phone prefix", func(t *testing.T) {
		data := map[string]any{
			"email":           "amine@example.dz",
			"password":        "s3cret-pass",
			"confirmPassword": "s3cret-pass",
			"phone":           "0441234567",
		}
		result := schema.Validate(data, nil)
		assert.False(t, result.Valid)
		assert.Contains(t, result.FieldErrors, "phone")
	})
}

func TestValidateNationalID(t *testing.T) {
	schema, ok := SchemaFor(3, models.RoleStudent)
	require.True(t, ok)

	staged := map[string]models.StagedFile{
		"nationalIdFront": {Field: "nationalIdFront"},
		"nationalIdBack":  {Field: "nationalIdBack"},
	}

	cases := []struct {
		name  string
		nin   string
		valid bool
	}{
		{"exact 18 digits", "123456789012345678", true},
		{"too short", "12345", false},
		{"too long", "1234567890123456789", false},
		{"letter in place of digit", "12345678901234567A", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := schema.Validate(map[string]any{"nationalId": tc.nin}, staged)
			assert.Equal(t, tc.valid, result.Valid)
			if !tc.valid {
				assert.Contains(t, result.FieldErrors, "nationalId")
			}
		})
	}
}

func TestValidateRequiredFiles(t *testing.T) {
	schema, ok := SchemaFor(3, models.RoleStudent)
	require.True(t, ok)

	data := map[string]any{"nationalId": "123456789012345678"}

	result := schema.Validate(data, nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.FieldErrors, "nationalIdFront")
	assert.Contains(t, result.FieldErrors, "nationalIdBack")

	partial := map[string]models.StagedFile{
		"nationalIdFront": {Field: "nationalIdFront"},
	}
	result = schema.Validate(data, partial)
	assert.False(t, result.Valid)
	assert.NotContains(t, result.FieldErrors, "nationalIdFront")
	assert.Contains(t, result.FieldErrors, "nationalIdBack")
}

func TestValidateIdentityStep(t *testing.T) {
	schema, ok := SchemaFor(2, models.RoleTeacher)
	require.True(t, ok)

	data := map[string]any{
		"firstName": "Yasmine",
		"lastName":  "Bencheikh",
		"birthDate": "1990-04-12",
		"gender":    "female",
		"wilaya":    "16",
		"address":   "12 Rue Didouche Mourad, Alger",
	}
	result := schema.Validate(data, nil)
	assert.True(t, result.Valid)

	t.Run("wilaya out of range", func(t *testing.T) {
		bad := map[string]any{}
		for k, v := range data {
			bad[k] = v
		}
		bad["wilaya"] = "59"
		result := schema.Validate(bad, nil)
		assert.False(t, result.Valid)
		assert.Contains(t, result.FieldErrors, "wilaya")
	})

	t.Run("bad birth date format", func(t *testing.T) {
		bad := map[string]any{}
		for k, v := range data {
			bad[k] = v
		}
		bad["birthDate"] = "12/04/1990"
		result := schema.Validate(bad, nil)
		assert.False(t, result.Valid)
		assert.Contains(t, result.FieldErrors, "birthDate")
	})
}

func TestValidateConsentStep(t *testing.T) {
	schema, ok := SchemaFor(5, models.RoleStudent)
	require.True(t, ok)

	result := schema.Validate(map[string]any{"termsAccepted": true, "dataConsent": true}, nil)
	assert.True(t, result.Valid)

	result = schema.Validate(map[string]any{"termsAccepted": true, "dataConsent": false}, nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.FieldErrors, "dataConsent")
}

func TestValidateStripsUndeclaredFields(t *testing.T) {
	schema, ok := SchemaFor(5, models.RoleStudent)
	require.True(t, ok)

	result := schema.Validate(map[string]any{
		"termsAccepted": true,
		"dataConsent":   true,
		"nationalId":    "BOGUS",
		"bio":           "smuggled",
	}, nil)
	require.True(t, result.Valid)

	assert.Contains(t, result.Fields, "termsAccepted")
	assert.Contains(t, result.Fields, "dataConsent")
	assert.NotContains(t, result.Fields, "nationalId",
		"keys outside the step's schema never survive validation")
	assert.NotContains(t, result.Fields, "bio")
}

func TestValidateShapeMismatch(t *testing.T) {
	schema, ok := SchemaFor(1, models.RoleStudent)
	require.True(t, ok)

	result := schema.Validate(map[string]any{"email": 42}, nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.FieldErrors, "_form")
}
