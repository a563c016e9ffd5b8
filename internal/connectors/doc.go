// Package connectors holds the clients for remote wikis. Each connector
// implements driven.WikiClient for one wiki product.
package connectors
