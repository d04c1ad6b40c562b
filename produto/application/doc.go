// Package application contém os casos de uso da consulta de produtos:
// o motor de despacho com rotação de credenciais e o limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Lookup(ctx, code) valida o GTIN, escolhe uma credencial,
// consulta o catálogo e rotaciona em caso de throttling.
package application
