package hashtable

// PrimePowersOfTwo holds the prime closest to each power of two from 2^0 to
// 2^64, in ascending order. Prime moduli spread hashes with poor low bits
// more evenly across buckets than powers of two do.
var PrimePowersOfTwo = []uint64{
	2,                    // 2^0
	2,                    // 2^1
	3,                    // 2^2
	7,                    // 2^3
	17,                   // 2^4
	31,                   // 2^5
	61,                   // 2^6
	127,                  // 2^7
	257,                  // 2^8
	509,                  // 2^9
	1021,                 // 2^10
	2053,                 // 2^11
	4093,                 // 2^12
	8191,                 // 2^13
	16381,                // 2^14
	32771,                // 2^15
	65537,                // 2^16
	131071,               // 2^17
	262147,               // 2^18
	524287,               // 2^19
	1048573,              // 2^20
	2097143,              // 2^21
	4194301,              // 2^22
	8388617,              // 2^23
	16777213,             // 2^24
	33554467,             // 2^25
	67108859,             // 2^26
	134217757,            // 2^27
	268435459,            // 2^28
	536870909,            // 2^29
	1073741827,           // 2^30
	2147483647,           // 2^31
	4294967291,           // 2^32
	8589934583,           // 2^33
	17179869209,          // 2^34
	34359738337,          // 2^35
	68719476731,          // 2^36
	137438953481,         // 2^37
	274877906951,         // 2^38
	549755813881,         // 2^39
	1099511627791,        // 2^40
	2199023255531,        // 2^41
	4398046511093,        // 2^42
	8796093022237,        // 2^43
	17592186044423,       // 2^44
	35184372088777,       // 2^45
	70368744177679,       // 2^46
	140737488355333,      // 2^47
	281474976710677,      // 2^48
	562949953421381,      // 2^49
	1125899906842597,     // 2^50
	2251799813685269,     // 2^51
	4503599627370517,     // 2^52
	9007199254740997,     // 2^53
	18014398509481951,    // 2^54
	36028797018963971,    // 2^55
	72057594037927931,    // 2^56
	144115188075855881,   // 2^57
	288230376151711717,   // 2^58
	576460752303423433,   // 2^59
	1152921504606847009,  // 2^60
	2305843009213693951,  // 2^61
	4611686018427387847,  // 2^62
	9223372036854775783,  // 2^63
	18446744073709551557, // 2^64
}
