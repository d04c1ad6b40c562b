// Package produto fornece os adapters HTTP (net/http) da API de consulta de
// produtos por GTIN.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (despacho com rotação, limite de concorrência) sem net/http
//   - infra: implementações concretas (pool de credenciais, cliente Cosmos,
//     estatísticas em Redis/memória), detalhes de infraestrutura
//   - produto (este pacote): handlers HTTP + autenticação por segredo
//     compartilhado + tradução de erros de domínio para status/corpos JSON,
//     e o cliente da própria API usado pelo processamento em lote
//
// Fluxo de uma consulta:
//
//  1. Valida o Bearer token estático
//  2. Chama a camada application (Lookup), que valida o GTIN, escolhe uma
//     credencial e consulta o catálogo, rotacionando em caso de throttling
//  3. Traduz o resultado: 400 (GTIN inválido), 429 (pool esgotado, com
//     snapshot dos tokens), 500 (erro upstream), 200 (encontrado ou não)
//
// Variáveis de ambiente do binário da API (cmd/api) controlam o comportamento,
// como BLUESOFT_TOKEN_1..4, TOKEN_DAILY_LIMIT e COSMOS_TIMEOUT.
package produto
