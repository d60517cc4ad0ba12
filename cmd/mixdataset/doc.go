// Command mixdataset builds a paired noisy/clean speech corpus.
//
// Every clean WAV under the clean directory is mixed with every noise WAV
// under the noise directory at each requested signal-to-noise ratio. The
// mixtures go to <out>/noisy and a matching copy of the clean speech goes
// to <out>/clean under the same file name, so the two directories pair up
// by sorted position. Both output directories are emptied first.
//
// Usage:
//
//	mixdataset -clean <dir> -noise <dir> [-out <dir>] [-snrs -5,0,5] [-config cfg.json]
//
// Settings can also come from SONIDO_* environment variables or a .env
// file in the working directory; flags win over both.
package main
