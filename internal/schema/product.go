// Package schema is the single validation pass between HTTP input and the
// services: each request shape validates and normalizes itself into a typed
// domain value, so services never re-check field formats.
package schema

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/product"
)

var imageExtRe = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp|avif|svg)$`)

func validateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Validation("la imagen debe ser una URL válida")
	}
	if !imageExtRe.MatchString(u.Path) {
		return apperr.Validation("la imagen debe apuntar a un archivo de imagen")
	}
	return nil
}

func validateUUID(id, name string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("ID inválido para %s", name)
	}
	return nil
}

type ProductCreate struct {
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Stock       int     `json:"stock"`
	Talle       string  `json:"talle"`
	Marca       string  `json:"marca"`
	Imagen      string  `json:"imagen"`
	UserID      string  `json:"userId"`
}

// Validate normalizes the input and returns a Product ready to persist
// (without an id; the caller generates one).
func (in ProductCreate) Validate() (*product.Product, error) {
	nombre := strings.TrimSpace(in.Nombre)
	if len(nombre) < 2 || len(nombre) > 100 {
		return nil, apperr.Validation("el nombre debe tener entre 2 y 100 caracteres")
	}
	descripcion := strings.TrimSpace(in.Descripcion)
	if len(descripcion) > 500 {
		return nil, apperr.Validation("la descripción no puede superar 500 caracteres")
	}
	if in.Precio < 0 {
		return nil, apperr.Validation("el precio no puede ser negativo")
	}
	if in.Stock < 0 {
		return nil, apperr.Validation("el stock no puede ser negativo")
	}
	talle, err := product.ParseSize(strings.TrimSpace(in.Talle))
	if err != nil {
		return nil, err
	}
	marca := strings.TrimSpace(in.Marca)
	if marca == "" {
		return nil, apperr.Validation("la marca es obligatoria")
	}
	imagen := strings.TrimSpace(in.Imagen)
	if err := validateImageURL(imagen); err != nil {
		return nil, err
	}
	if err := validateUUID(in.UserID, "vendedor"); err != nil {
		return nil, err
	}
	return &product.Product{
		Nombre:      nombre,
		Descripcion: descripcion,
		Precio:      in.Precio,
		Stock:       in.Stock,
		Talle:       talle,
		Marca:       marca,
		Imagen:      imagen,
		UserID:      in.UserID,
	}, nil
}

type ProductUpdate struct {
	Nombre      *string  `json:"nombre"`
	Descripcion *string  `json:"descripcion"`
	Precio      *float64 `json:"precio"`
	Stock       *int     `json:"stock"`
	Talle       *string  `json:"talle"`
	Marca       *string  `json:"marca"`
	Imagen      *string  `json:"imagen"`
}

// Apply validates the present fields and merges them into p. Validation
// failures leave p untouched.
func (in ProductUpdate) Apply(p *product.Product) error {
	merged := *p
	if in.Nombre != nil {
		nombre := strings.TrimSpace(*in.Nombre)
		if len(nombre) < 2 || len(nombre) > 100 {
			return apperr.Validation("el nombre debe tener entre 2 y 100 caracteres")
		}
		merged.Nombre = nombre
	}
	if in.Descripcion != nil {
		descripcion := strings.TrimSpace(*in.Descripcion)
		if len(descripcion) > 500 {
			return apperr.Validation("la descripción no puede superar 500 caracteres")
		}
		merged.Descripcion = descripcion
	}
	if in.Precio != nil {
		if *in.Precio < 0 {
			return apperr.Validation("el precio no puede ser negativo")
		}
		merged.Precio = *in.Precio
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return apperr.Validation("el stock no puede ser negativo")
		}
		merged.Stock = *in.Stock
	}
	if in.Talle != nil {
		talle, err := product.ParseSize(strings.TrimSpace(*in.Talle))
		if err != nil {
			return err
		}
		merged.Talle = talle
	}
	if in.Marca != nil {
		marca := strings.TrimSpace(*in.Marca)
		if marca == "" {
			return apperr.Validation("la marca es obligatoria")
		}
		merged.Marca = marca
	}
	if in.Imagen != nil {
		imagen := strings.TrimSpace(*in.Imagen)
		if err := validateImageURL(imagen); err != nil {
			return err
		}
		merged.Imagen = imagen
	}
	*p = merged
	return nil
}
