package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Capability permiso nominal verificado independientemente de la autenticación.
type Capability string

const (
	CapabilityView    Capability = "visualizar"
	CapabilityOutflow Capability = "registrarSaida"
	CapabilityInflow  Capability = "editarEstoque"
)

// legacyAdmin valor de permiso heredado (string) equivalente a administrador.
const legacyAdmin = "admin"

// Permission forma normalizada del permiso de un usuario.
// Outflow nil significa "igual a Login" (comportamiento por defecto).
type Permission struct {
	Login     bool  `json:"login"`
	EditStock bool  `json:"editarEstoque"`
	Outflow   *bool `json:"registrarSaida,omitempty"`
	IsAdmin   bool  `json:"isAdmin"`
}

// ParsePermission normaliza el permiso almacenado, que puede ser el string heredado
// ("admin") o un objeto con capacidades independientes. Vacío o null no concede nada.
func ParsePermission(raw []byte) (Permission, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Permission{}, nil
	}
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		if legacy == legacyAdmin {
			return Permission{Login: true, EditStock: true, IsAdmin: true}, nil
		}
		return Permission{}, nil
	}
	var p Permission
	if err := json.Unmarshal(raw, &p); err != nil {
		return Permission{}, fmt.Errorf("permiso con formato desconocido: %w", err)
	}
	return p, nil
}

// Capabilities conjunto de operaciones habilitadas para un actor.
type Capabilities struct {
	View    bool
	Outflow bool
	Inflow  bool
}

// Capabilities traduce el permiso normalizado a operaciones habilitadas.
func (p Permission) Capabilities() Capabilities {
	if p.IsAdmin {
		return Capabilities{View: true, Outflow: true, Inflow: true}
	}
	outflow := p.Login
	if p.Outflow != nil {
		outflow = p.Login && *p.Outflow
	}
	return Capabilities{
		View:    p.Login,
		Outflow: outflow,
		Inflow:  p.Login && p.EditStock,
	}
}

// Has informa si el conjunto incluye la capacidad.
func (c Capabilities) Has(capability Capability) bool {
	switch capability {
	case CapabilityView:
		return c.View
	case CapabilityOutflow:
		return c.Outflow
	case CapabilityInflow:
		return c.Inflow
	}
	return false
}

// User usuario del sistema con su permiso ya normalizado.
type User struct {
	ID          string
	Username    string
	DisplayName string
	Permission  Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Actor identidad autenticada que ejecuta una operación.
type Actor struct {
	ID           string
	Name         string
	Capabilities Capabilities
}
