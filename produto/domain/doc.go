// Package domain define contratos e tipos de domínio para a consulta de
// produtos por GTIN com rotação de credenciais.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura (cliente HTTP do catálogo, Redis, etc).
package domain
