package domain

import "context"

// Catalog é o cliente do provedor de catálogo upstream.
//
// Contrato de erros:
//   - ErrNotFound quando o provedor não conhece o GTIN (404)
//   - ErrThrottled quando o provedor sinaliza limite de requisições (429)
//   - *UpstreamError para falha de rede ou status inesperado
//
// A implementação não deve tocar o pool de credenciais: quem decide consumir
// uso ou marcar esgotamento é o motor de despacho.
type Catalog interface {
	Fetch(ctx context.Context, code string, cred Credential) (*Payload, error)
}
