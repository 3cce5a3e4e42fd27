// Package controllers translates HTTP requests into service calls.
package controllers

import "github.com/shashiranjanraj/propelyu/pkg/ctx"

func Home(c *ctx.Context) {
	c.Message("Welcome to the Propelyu Advertisement API")
}
