// Package driverpack is a small dependency container. Keys map to factories;
// a factory receives its key and the pack so it can fetch what it depends on
// explicitly. In singleton mode every key is built once and cached.
package driverpack
