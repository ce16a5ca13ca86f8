package auth

// Claims es lo que se extrae de una aserción firmada por el cliente.
type Claims struct {
	KeyID   string
	Subject string
	Issuer  string
}
