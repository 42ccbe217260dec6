// Package application wires the cash drawer, change calculator, HTTP
// handlers, and server together so the main package only parses flags and
// manages the process lifecycle.
package application
