// Package serovar holds the I/O helpers shared by the serovar typing tools:
// transparent decompression, delimiter sniffing, Google Storage access and
// logging setup. The typing logic itself lives in the mlst2serovar, antigen
// and consensus packages.
package serovar
