package product

import "github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// ParseSize fails on unrecognized values. The previous behavior of falling
// back to a default size masked corrupt rows; an explicit error surfaces them.
func ParseSize(s string) (Size, error) {
	switch Size(s) {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL:
		return Size(s), nil
	}
	return "", apperr.Validation("talle inválido: %q", s)
}

type Product struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Stock       int     `json:"stock"`
	Talle       Size    `json:"talle"`
	Marca       string  `json:"marca"`
	Imagen      string  `json:"imagen"`
	UserID      string  `json:"userId"` // owning seller
}

// Public omits the owning seller id for unauthenticated reads.
type Public struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Stock       int     `json:"stock"`
	Talle       Size    `json:"talle"`
	Marca       string  `json:"marca"`
	Imagen      string  `json:"imagen"`
}

func (p Product) Public() Public {
	return Public{
		ID: p.ID, Nombre: p.Nombre, Descripcion: p.Descripcion,
		Precio: p.Precio, Stock: p.Stock, Talle: p.Talle,
		Marca: p.Marca, Imagen: p.Imagen,
	}
}
