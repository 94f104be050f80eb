package models

import (
	"encoding/json"
	"testing"
)

func TestOrganizationNormalizeParsesAdminFlag(t *testing.T) {
	t.Parallel()

	raw := `{"idOrganizacion":4,"nombre":"Cruz Roja","rolesUsuario":[
		{"idRol":5,"nombreRol":"Coordinador","esAdmin":"true"},
		{"idRol":9,"nombreRol":"Voluntario","esAdmin":"false"},
		{"idRol":2,"nombreRol":"Dueño","esAdmin":true}]}`
	var api OrganizationAPI
	if err := json.Unmarshal([]byte(raw), &api); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	org := api.Normalize()
	if org.ID != 4 || len(org.Roles) != 3 {
		t.Fatalf("org = %+v", org)
	}
	want := []bool{true, false, true}
	for i, r := range org.Roles {
		if r.IsAdmin != want[i] {
			t.Fatalf("role %d isAdmin = %v, want %v", r.ID, r.IsAdmin, want[i])
		}
	}
}

func TestOrganizationNormalizeKeepsNilRoles(t *testing.T) {
	t.Parallel()

	org := OrganizationAPI{ID: 1, Name: "x"}.Normalize()
	if org.Roles != nil {
		t.Fatalf("roles = %#v, want nil", org.Roles)
	}
}

func TestMemberNormalizeMapsActiveStatus(t *testing.T) {
	t.Parallel()

	if !(MemberAPI{Status: "A"}).Normalize().Active {
		t.Fatal("status A must be active")
	}
	if (MemberAPI{Status: "I"}).Normalize().Active {
		t.Fatal("status I must be inactive")
	}
}
