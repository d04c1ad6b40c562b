// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - Pool: pool de credenciais em memória com rotação e reset diário preguiçoso
//   - CosmosClient: cliente HTTP do catálogo Cosmos Bluesoft
//   - RedisStatsStore / MemoryStatsStore: estatísticas de consulta
//   - ChanPool: semáforo simples para limite de concorrência
package infra
