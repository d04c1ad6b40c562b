// Package batch implementa o processamento noturno de produtos pendentes.
//
// Fluxo:
//
//  1. Busca produtos pendentes no banco (Supabase/PostgREST)
//  2. Consulta cada GTIN pela API do gateway (que rotaciona as credenciais)
//  3. Atualiza o registro do produto e grava o log da consulta
//  4. Emite um relatório ao final
//
// A política de retry com espera escalonada para cold start do gateway mora
// aqui, no chamador; o motor de despacho não retenta erros de upstream.
package batch
