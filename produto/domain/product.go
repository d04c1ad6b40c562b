package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GTINLength é o único comprimento aceito. O proxy original valida EAN-13 e o
// fluxo de cadastro só produz códigos de 13 dígitos, então outros comprimentos
// (8/12/14) são rejeitados aqui de propósito.
const GTINLength = 13

// ValidateGTIN valida o código antes de qualquer acesso ao pool: um código
// malformado não consome credencial.
func ValidateGTIN(code string) error {
	if code == "" {
		return fmt.Errorf("%w: código não informado", ErrInvalidCode)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: deve conter apenas números", ErrInvalidCode)
		}
	}
	if len(code) != GTINLength {
		return fmt.Errorf("%w: deve ter %d dígitos (recebido: %d)", ErrInvalidCode, GTINLength, len(code))
	}
	return nil
}

// Payload é o esquema explícito do corpo retornado pelo catálogo upstream.
//
// Todos os campos são opcionais: ausência propaga como campo ausente no
// registro canônico, nunca como erro. A validação acontece uma única vez,
// aqui na fronteira de normalização.
type Payload struct {
	GTIN        json.Number   `json:"gtin"`
	Description string        `json:"description"`
	Brand       *BrandInfo    `json:"brand"`
	Category    *CategoryInfo `json:"category"`
	NCM         *NCMInfo      `json:"ncm"`
	AvgPrice    *float64      `json:"avg_price"`
	NetWeight   Weight        `json:"net_weight"`
	GrossWeight Weight        `json:"gross_weight"`
	Thumbnail   string        `json:"thumbnail"`
}

// BrandInfo é a marca/fabricante segundo o catálogo.
type BrandInfo struct {
	Name string `json:"name"`
}

// CategoryInfo é a categoria segundo o catálogo.
type CategoryInfo struct {
	Description string `json:"description"`
}

// NCMInfo é a classificação fiscal (NCM) do produto.
type NCMInfo struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Weight é um peso que o upstream pode mandar como número puro ou como string
// com sufixo de unidade ("1kg", "500g").
type Weight struct {
	text    string
	number  float64
	isText  bool
	present bool
}

// UnmarshalJSON aceita número, string ou null. Qualquer outro formato vira
// campo ausente, nunca erro: o payload do provedor é heterogêneo demais para
// falhar a consulta por causa de um peso.
func (w *Weight) UnmarshalJSON(b []byte) error {
	*w = Weight{}

	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		w.number = num
		w.present = true
		return nil
	}

	var text string
	if err := json.Unmarshal(b, &text); err == nil && text != "" {
		w.text = text
		w.isText = true
		w.present = true
		return nil
	}

	return nil
}

// Grams converte o peso para gramas.
//
// Heurística assumida do provedor: valores abaixo de 100, ou strings
// terminadas em "kg", estão em quilogramas; o restante já está em gramas.
// É uma aproximação deliberada, não um parser de unidades: falha de parse
// resulta em campo ausente (ok=false), nunca em erro propagado.
func (w Weight) Grams() (int, bool) {
	if !w.present {
		return 0, false
	}

	num := w.number
	if w.isText {
		cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(w.text, "kg", ""), "g", ""))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		num = parsed
		if strings.HasSuffix(strings.ToLower(w.text), "kg") || num < 100 {
			return int(num * 1000), true
		}
		return int(num), true
	}

	if num < 100 {
		return int(num * 1000), true
	}
	return int(num), true
}

// Product é o registro canônico de produto devolvido pela API.
//
// Campos opcionais são ponteiros: nil serializa como null, igual à API
// original. Os nomes JSON são o contrato público com o frontend.
type Product struct {
	Found        bool     `json:"encontrado"`
	GTIN         string   `json:"ean_gtin"`
	Description  *string  `json:"descricao"`
	Brand        *string  `json:"marca"`
	Manufacturer *string  `json:"fabricante"`
	Category     *string  `json:"categoria_api"`
	NCM          *string  `json:"ncm"`
	NCMFull      *string  `json:"ncm_completo"`
	AvgPrice     *float64 `json:"preco_medio"`
	NetWeightG   *int     `json:"peso_liquido_em_gramas"`
	GrossWeightG *int     `json:"peso_bruto_em_gramas"`
	ImageURL     *string  `json:"imagem_url"`
	Message      string   `json:"mensagem"`
}

// NotFound constrói o resultado negativo válido (upstream 404).
func NotFound(code, message string) *Product {
	if message == "" {
		message = "Produto não encontrado na base Cosmos"
	}
	return &Product{Found: false, GTIN: code, Message: message}
}

// NormalizeNCM remove a pontuação do código NCM e trunca nos 8 primeiros
// caracteres. Retorna "" quando o código está ausente.
func NormalizeNCM(code string) string {
	code = strings.ReplaceAll(code, ".", "")
	code = strings.ReplaceAll(code, "-", "")
	if len(code) > 8 {
		code = code[:8]
	}
	return code
}

// Normalize é a função pura payload -> registro canônico.
// Payload nil significa "sem dados" e resulta em nil.
func Normalize(code string, p *Payload) *Product {
	if p == nil {
		return nil
	}

	prod := &Product{
		Found:   true,
		GTIN:    code,
		Message: "Produto encontrado com sucesso",
	}
	if g := p.GTIN.String(); g != "" {
		prod.GTIN = g
	}

	if p.Description != "" {
		prod.Description = ptr(p.Description)
	}
	if p.Brand != nil && p.Brand.Name != "" {
		// a API original espelha a marca em fabricante
		prod.Brand = ptr(p.Brand.Name)
		prod.Manufacturer = ptr(p.Brand.Name)
	}
	if p.Category != nil && p.Category.Description != "" {
		prod.Category = ptr(p.Category.Description)
	}

	if p.NCM != nil {
		if ncm := NormalizeNCM(p.NCM.Code); ncm != "" {
			prod.NCM = ptr(ncm)
			if p.NCM.Description != "" {
				prod.NCMFull = ptr(ncm + " - " + p.NCM.Description)
			}
		}
	}

	prod.AvgPrice = p.AvgPrice
	if grams, ok := p.NetWeight.Grams(); ok {
		prod.NetWeightG = ptr(grams)
	}
	if grams, ok := p.GrossWeight.Grams(); ok {
		prod.GrossWeightG = ptr(grams)
	}
	if p.Thumbnail != "" {
		prod.ImageURL = ptr(p.Thumbnail)
	}

	return prod
}

func ptr[T any](v T) *T { return &v }
